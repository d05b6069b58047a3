package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"RateBot/internal/domain/models"

	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var placeholder = color.NRGBA{R: 200, G: 200, B: 200, A: 60}

func fixture() ([]models.RateQuote, []image.Image) {
	insts := models.DefaultInstruments()
	quotes := make([]models.RateQuote, len(insts))
	icons := make([]image.Image, len(insts))
	for i, inst := range insts {
		if i%2 == 0 {
			quotes[i] = models.NewRateQuote(inst, decimal.NewFromFloat(0.01).Add(decimal.NewFromInt(int64(i)).Shift(-3)))
		} else {
			quotes[i] = models.UnavailableQuote(inst)
		}
		icons[i] = imaging.New(120, 120, color.NRGBA{R: uint8(40 * i), G: 80, B: 160, A: 255})
	}
	return quotes, icons
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestRenderIsDeterministic(t *testing.T) {
	r := newTestRenderer(t)
	quotes, icons := fixture()

	a, err := r.Render(context.Background(), quotes, icons)
	require.NoError(t, err)
	b, err := r.Render(context.Background(), quotes, icons)
	require.NoError(t, err)

	require.True(t, bytes.Equal(a.PNG, b.PNG))
	require.Equal(t, a.Hash, b.Hash)

	decoded, err := png.Decode(bytes.NewReader(a.PNG))
	require.NoError(t, err)
	require.Equal(t, a.Image.Bounds(), decoded.Bounds())
}

func TestRenderDiffersWithInput(t *testing.T) {
	r := newTestRenderer(t)
	quotes, icons := fixture()

	a, err := r.Render(context.Background(), quotes, icons)
	require.NoError(t, err)

	quotes[1] = models.NewRateQuote(quotes[1].Instrument, decimal.RequireFromString("0.0250"))
	b, err := r.Render(context.Background(), quotes, icons)
	require.NoError(t, err)

	require.NotEqual(t, a.Hash, b.Hash)
}

func TestRenderAllUnavailable(t *testing.T) {
	r := newTestRenderer(t)
	insts := models.DefaultInstruments()
	quotes := make([]models.RateQuote, len(insts))
	icons := make([]image.Image, len(insts))
	for i, inst := range insts {
		quotes[i] = models.UnavailableQuote(inst)
		icons[i] = imaging.New(120, 120, placeholder)
	}

	artifact, err := r.Render(context.Background(), quotes, icons)
	require.NoError(t, err)
	require.NotEmpty(t, artifact.PNG)

	// table plus padding; the icons sit inside the table
	table := tableRect(len(quotes) + 1)
	pad := round(cropPad)
	require.Equal(t, table.Dx()+2*pad, artifact.Image.Bounds().Dx())
	require.Equal(t, table.Dy()+2*pad, artifact.Image.Bounds().Dy())

	origin := table.Min.Sub(image.Pt(pad, pad))
	header := cellRect(table, len(quotes)+1, 0, 1).Min.Add(image.Pt(3, 3)).Sub(origin)
	require.Equal(t, headerFill, color.NRGBAModel.Convert(artifact.Image.At(header.X, header.Y)))

	body := cellRect(table, len(quotes)+1, 2, 2).Min.Add(image.Pt(3, 3)).Sub(origin)
	require.Equal(t, bodyFill, color.NRGBAModel.Convert(artifact.Image.At(body.X, body.Y)))

	edge := cellRect(table, len(quotes)+1, 2, 2).Min.Sub(origin)
	require.Equal(t, edgeColor, color.NRGBAModel.Convert(artifact.Image.At(edge.X, edge.Y)))
}

func TestRenderRejectsBadInput(t *testing.T) {
	r := newTestRenderer(t)
	quotes, icons := fixture()

	_, err := r.Render(context.Background(), quotes, icons[:2])
	require.ErrorIs(t, err, models.ErrRenderFailed)

	icons[3] = nil
	_, err = r.Render(context.Background(), quotes, icons)
	require.ErrorIs(t, err, models.ErrRenderFailed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, quotes, icons)
	require.ErrorIs(t, err, models.ErrRenderFailed)
}

func TestIconGeometry(t *testing.T) {
	require.Equal(t, 44, iconSide(120))

	table := tableRect(7)
	for i := 0; i < 6; i++ {
		rect := iconRect(i, 120)
		require.True(t, rect.In(table), "icon %d outside table: %v", i, rect)
	}
	require.Less(t, iconRect(0, 120).Min.Y, iconRect(1, 120).Min.Y)
}
