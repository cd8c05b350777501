package api

import (
	"net/http"
	"strings"
)

// AccountAssociation is the signed domain claim issued by the host platform.
type AccountAssociation struct {
	Header    string `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// Frame describes the mini app to the host platform.
type Frame struct {
	Name                  string   `json:"name"`
	Version               string   `json:"version"`
	IconURL               string   `json:"iconUrl"`
	HomeURL               string   `json:"homeUrl"`
	ImageURL              string   `json:"imageUrl"`
	ButtonTitle           string   `json:"buttonTitle"`
	SplashImageURL        string   `json:"splashImageUrl"`
	SplashBackgroundColor string   `json:"splashBackgroundColor"`
	WebhookURL            string   `json:"webhookUrl"`
	Subtitle              string   `json:"subtitle"`
	Description           string   `json:"description"`
	PrimaryCategory       string   `json:"primaryCategory"`
	ScreenshotURLs        []string `json:"screenshotUrls"`
	HeroImageURL          string   `json:"heroImageUrl"`
	Tags                  []string `json:"tags"`
	Tagline               string   `json:"tagline"`
	OGTitle               string   `json:"ogTitle"`
	OGDescription         string   `json:"ogDescription"`
	OGImageURL            string   `json:"ogImageUrl"`
}

// Manifest is the document served at /.well-known/farcaster.json.
type Manifest struct {
	AccountAssociation AccountAssociation `json:"accountAssociation"`
	Frame              Frame              `json:"frame"`
}

// ManifestSettings are the configurable parts of the manifest.
type ManifestSettings struct {
	AppURL                string
	AppName               string
	IconURL               string
	ImageURL              string
	SplashImageURL        string
	SplashBackgroundColor string
	Tagline               string
	Description           string
	AccountAssociation    AccountAssociation
}

// NewManifest derives the full manifest from s. Home and webhook URLs hang
// off AppURL; the hero and share images reuse ImageURL and SplashImageURL.
func NewManifest(s ManifestSettings) Manifest {
	home := strings.TrimRight(s.AppURL, "/")
	return Manifest{
		AccountAssociation: s.AccountAssociation,
		Frame: Frame{
			Name:                  s.AppName,
			Version:               "1",
			IconURL:               s.IconURL,
			HomeURL:               home,
			ImageURL:              s.ImageURL,
			ButtonTitle:           "Open mini app",
			SplashImageURL:        s.SplashImageURL,
			SplashBackgroundColor: s.SplashBackgroundColor,
			WebhookURL:            home + "/api/webhook",
			Subtitle:              s.Description,
			Description:           s.Description,
			PrimaryCategory:       "games",
			ScreenshotURLs:        []string{s.ImageURL},
			HeroImageURL:          s.ImageURL,
			Tags:                  []string{"fun", "games", "challenge", "social"},
			Tagline:               s.Tagline,
			OGTitle:               s.Tagline,
			OGDescription:         s.Tagline,
			OGImageURL:            s.SplashImageURL,
		},
	}
}

// ManifestHandler serves the host platform manifest.
type ManifestHandler struct {
	manifest Manifest
}

// NewManifestHandler creates a new manifest handler.
func NewManifestHandler(m Manifest) *ManifestHandler {
	return &ManifestHandler{manifest: m}
}

// HandleManifest handles GET /api/farcaster and /.well-known/farcaster.json.
func (h *ManifestHandler) HandleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.manifest)
}
