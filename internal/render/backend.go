package render

import (
	"path/filepath"
	"strings"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/wcharczuk/go-chart/v2"
)

// Backend is a drawing surface for a chart.
type Backend interface {
	Name() string
	Provider() chart.RendererProvider
}

type vectorBackend struct{}

func (vectorBackend) Name() string                     { return "svg" }
func (vectorBackend) Provider() chart.RendererProvider { return chart.SVG }

type bitmapBackend struct{}

func (bitmapBackend) Name() string                     { return "png" }
func (bitmapBackend) Provider() chart.RendererProvider { return chart.PNG }

// SVG draws vector output.
func SVG() Backend { return vectorBackend{} }

// PNG draws bitmap output.
func PNG() Backend { return bitmapBackend{} }

// BackendFor picks the backend matching the extension of path.
func BackendFor(path string) (Backend, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return SVG(), nil
	case ".png":
		return PNG(), nil
	default:
		return nil, errors.New().WithData(ErrUnsupportedFormat, ext).
			WithMessage("output must end in .svg or .png")
	}
}
