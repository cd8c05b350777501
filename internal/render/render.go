// Package render draws share cards: the player's stroke with the fitted
// circle overlaid as a dashed guide.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/okian/perfectcircle/internal/domain/model"
	"github.com/okian/perfectcircle/internal/domain/scoring"
	"github.com/okian/perfectcircle/pkg/metrics"
)

// Card rendering defaults.
const (
	DefaultMaxSide = 1024
	MaxCanvasSide  = 4096

	strokeWidth  = 4
	overlayWidth = 3
	overlayDash  = 5
)

// Card is an encoded share image.
type Card struct {
	PNG    []byte
	Width  int
	Height int
	// ETag is a weak validator built from the perceptual hash, so visually
	// identical cards share it even when their bytes differ.
	ETag string
	Hash *goimagehash.ImageHash
}

// Distance returns the Hamming distance between two cards' perceptual hashes.
func (c Card) Distance(other Card) (int, error) {
	if c.Hash == nil || other.Hash == nil {
		return 0, ErrNoHash
	}
	return c.Hash.Distance(other.Hash)
}

// Renderer draws cards.
type Renderer interface {
	Render(stroke model.Stroke, surface model.Surface, result *scoring.Result) (Card, error)
}

// CardRenderer renders with the gg software rasterizer.
type CardRenderer struct {
	maxSide int
}

var _ Renderer = (*CardRenderer)(nil)

// NewCardRenderer creates a renderer with configuration options.
func NewCardRenderer(opts ...Option) *CardRenderer {
	r := &CardRenderer{maxSide: DefaultMaxSide}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxSide returns the longest edge of rendered cards.
func (r *CardRenderer) MaxSide() int { return r.maxSide }

// Render draws stroke on a white surface-sized canvas. When result is
// non-nil its circle is overlaid. Canvases larger than maxSide are
// downscaled before encoding.
func (r *CardRenderer) Render(stroke model.Stroke, surface model.Surface, result *scoring.Result) (Card, error) {
	start := time.Now()

	card, err := r.render(stroke, surface, result)
	if err != nil {
		metrics.RecordCardError()
		return Card{}, err
	}

	metrics.RecordCardRendered(float64(time.Since(start).Milliseconds()))
	return card, nil
}

func (r *CardRenderer) render(stroke model.Stroke, surface model.Surface, result *scoring.Result) (Card, error) {
	if !surface.Valid() {
		return Card{}, ErrInvalidSurface
	}
	if surface.Width > MaxCanvasSide || surface.Height > MaxCanvasSide {
		return Card{}, fmt.Errorf("%w: %.0fx%.0f", ErrCanvasTooLarge, surface.Width, surface.Height)
	}
	if stroke.Len() == 0 {
		return Card{}, ErrEmptyStroke
	}

	w := int(math.Ceil(surface.Width))
	h := int(math.Ceil(surface.Height))

	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(gg.White)

	if err := drawStroke(dc, stroke); err != nil {
		return Card{}, fmt.Errorf("draw stroke: %w", err)
	}
	if result != nil && result.Circle.Radius > 0 {
		if err := drawGuide(dc, result.Circle); err != nil {
			return Card{}, fmt.Errorf("draw guide: %w", err)
		}
	}
	if err := dc.FlushGPU(); err != nil {
		return Card{}, fmt.Errorf("flush: %w", err)
	}

	img := r.fit(dc.Image())

	hash, err := goimagehash.AverageHash(img)
	if err != nil {
		return Card{}, fmt.Errorf("hash card: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Card{}, fmt.Errorf("encode card: %w", err)
	}

	b := img.Bounds()
	return Card{
		PNG:    buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
		ETag:   fmt.Sprintf(`W/"ahash-%016x"`, hash.GetHash()),
		Hash:   hash,
	}, nil
}

func drawStroke(dc *gg.Context, stroke model.Stroke) error {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(strokeWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.ClearDash()

	first := stroke.First()
	dc.MoveTo(first.X, first.Y)
	if stroke.Len() == 1 {
		// a lone tap still leaves a round dot
		dc.LineTo(first.X, first.Y)
	}
	for _, p := range stroke[1:] {
		dc.LineTo(p.X, p.Y)
	}
	return dc.Stroke()
}

func drawGuide(dc *gg.Context, c model.Circle) error {
	dc.SetRGBA(0, 150.0/255, 1, 0.6)
	dc.SetLineWidth(overlayWidth)
	dc.SetDash(overlayDash, overlayDash)
	dc.DrawCircle(c.Center.X, c.Center.Y, c.Radius)
	return dc.Stroke()
}

// fit downscales img so its longest side is at most maxSide.
func (r *CardRenderer) fit(img image.Image) image.Image {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	if longest <= r.maxSide {
		return img
	}

	scale := float64(r.maxSide) / float64(longest)
	dw := max(1, int(math.Round(float64(b.Dx())*scale)))
	dh := max(1, int(math.Round(float64(b.Dy())*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
