package api

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const imageCacheControl = "public, max-age=86400"

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// ImagesHandler serves static artwork from a public directory.
type ImagesHandler struct {
	dir string
}

// NewImagesHandler creates a new images handler rooted at dir.
func NewImagesHandler(dir string) *ImagesHandler {
	return &ImagesHandler{dir: dir}
}

// sanitizeImageName keeps letters, digits, dot, underscore, parentheses,
// space and hyphen, then drops any directory part.
func sanitizeImageName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("._() -", r):
			return r
		default:
			return -1
		}
	}, name)
	clean = filepath.Base(clean)
	if clean == "." || clean == ".." {
		return ""
	}
	return clean
}

// HandleImage handles GET /api/images?image=NAME.
func (h *ImagesHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	raw := r.URL.Query().Get("image")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind("image parameter is required", ErrBadRequest))
		return
	}
	name := sanitizeImageName(raw)
	if name == "" {
		writeError(w, http.StatusNotFound, "not_found", NewKind("image", ErrNotFound))
		return
	}

	path := filepath.Join(h.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "not_found", NewKind("image", ErrNotFound))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind("stat image", ErrInternal, err))
		return
	}

	contentType, ok := imageTypes[strings.ToLower(filepath.Ext(name))]
	if !ok || info.IsDir() {
		writeError(w, http.StatusBadRequest, "unsupported_image", ErrUnsupportedImage)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind("read image", ErrInternal, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", imageCacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
