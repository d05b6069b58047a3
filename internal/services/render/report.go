package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"RateBot/internal/domain/models"
	"RateBot/pkg/logger"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/zeebo/xxh3"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	headerFill = color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}
	bodyFill   = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	edgeColor  = color.NRGBA{A: 0xff}
	headerText = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	bodyText   = color.NRGBA{A: 0xff}
)

// Renderer draws the funding-rate table with one icon per row and encodes it as PNG.
// Output depends only on the inputs: no clock, no randomness, embedded fonts.
type Renderer struct {
	regular *opentype.Font
	bold    *opentype.Font
	log     *logger.Logger
}

// Option configures Renderer.
type Option func(*Renderer)

func WithLogger(l *logger.Logger) Option {
	return func(r *Renderer) {
		r.log = l
	}
}

// NewRenderer parses the embedded Go fonts.
func NewRenderer(opts ...Option) (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}

	r := &Renderer{regular: regular, bold: bold, log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render composes quotes and their icons (icons[i] belongs to quotes[i]).
// Errors wrap models.ErrRenderFailed.
func (r *Renderer) Render(ctx context.Context, quotes []models.RateQuote, icons []image.Image) (*models.ReportArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRenderFailed, err)
	}
	if len(quotes) != len(icons) {
		return nil, fmt.Errorf("%w: %d quotes but %d icons", models.ErrRenderFailed, len(quotes), len(icons))
	}
	for i, ic := range icons {
		if ic == nil {
			return nil, fmt.Errorf("%w: missing icon for row %d", models.ErrRenderFailed, i)
		}
	}

	start := time.Now()

	// faces carry glyph caches and are not safe for concurrent use
	regular, err := newFace(r.regular)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRenderFailed, err)
	}
	defer regular.Close()
	bold, err := newFace(r.bold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRenderFailed, err)
	}
	defer bold.Close()

	canvas := imaging.New(int(figWidth), int(figHeight), color.White)

	rows := len(quotes) + 1
	table := tableRect(rows)
	content := table

	for col, label := range columns {
		cell := cellRect(table, rows, 0, col)
		fillCell(canvas, cell, headerFill)
		drawCentered(canvas, bold, label, cell, headerText)
	}
	for i, q := range quotes {
		texts := [...]string{q.Instrument.DisplayName, q.DailyText(), q.APRText()}
		for col, text := range texts {
			cell := cellRect(table, rows, i+1, col)
			fillCell(canvas, cell, bodyFill)
			drawCentered(canvas, regular, text, cell, bodyText)
		}
	}

	for i, ic := range icons {
		src := ic.Bounds().Dx()
		if h := ic.Bounds().Dy(); h > src {
			src = h
		}
		dst := iconRect(i, src)
		scaled := imaging.Resize(ic, dst.Dx(), dst.Dy(), imaging.Lanczos)
		canvas = imaging.Overlay(canvas, scaled, dst.Min, 1.0)
		content = content.Union(dst)
	}

	pad := round(cropPad)
	crop := content.Inset(-pad).Intersect(canvas.Bounds())
	out := imaging.Crop(canvas, crop)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", models.ErrRenderFailed, err)
	}

	artifact := &models.ReportArtifact{
		Image: out,
		PNG:   buf.Bytes(),
		Hash:  xxh3.Hash(buf.Bytes()),
	}

	r.log.Debug("report rendered",
		logger.Int("rows", len(quotes)),
		logger.String("size", humanize.Bytes(uint64(len(artifact.PNG)))),
		logger.String("hash", artifact.HashHex()),
		logger.Duration("duration_ms", time.Since(start)))

	return artifact, nil
}

func newFace(f *opentype.Font) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSizePt,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

// fillCell paints the cell and outlines it with the edge color.
func fillCell(dst draw.Image, cell image.Rectangle, fill color.Color) {
	draw.Draw(dst, cell, image.NewUniform(edgeColor), image.Point{}, draw.Src)
	draw.Draw(dst, cell.Inset(edgeWidth), image.NewUniform(fill), image.Point{}, draw.Src)
}

func drawCentered(dst draw.Image, face font.Face, text string, cell image.Rectangle, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	width := d.MeasureString(text)
	m := face.Metrics()

	cx := fixed.I(cell.Min.X + cell.Dx()/2)
	cy := fixed.I(cell.Min.Y + cell.Dy()/2)
	d.Dot = fixed.Point26_6{
		X: cx - width/2,
		Y: cy + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
}
