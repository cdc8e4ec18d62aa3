package resource

import (
	"image"

	"tagflow/pkg/layout"
	"tagflow/pkg/render"
)

// Renderer renders a document onto an image.
type Renderer interface {
	RenderImage(doc *Document, target *image.RGBA, dpiScale float64) layout.Result
}

var _ Renderer = (*Pipeline)(nil)

// Render lays out doc on cv and hands every segment to painter, which may be
// nil.
func (p *Pipeline) Render(doc *Document, cv layout.Canvas, painter layout.Painter) layout.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := p.engine.Render(doc.Tokens, cv, painter)
	p.log.WithField("url", doc.URL).Debugf("laid out %d segments on %d lines", len(res.Segments), res.Lines)
	return res
}

// RenderImage clears target to white and paints doc into it. The canvas
// size is taken from the image bounds.
func (p *Pipeline) RenderImage(doc *Document, target *image.RGBA, dpiScale float64) layout.Result {
	raster := render.NewRasterForImage(target, p.fonts)
	raster.SetLogger(p.log)
	bounds := target.Bounds()
	cv := layout.Canvas{
		Width:    float64(bounds.Dx()),
		Height:   float64(bounds.Dy()),
		DPIScale: dpiScale,
	}
	return p.Render(doc, cv, raster)
}

// RenderPDF lays doc out on a width x height page.
func (p *Pipeline) RenderPDF(doc *Document, width, height, dpiScale float64) (*render.PDF, layout.Result) {
	pdf := render.NewPDF(width, height, p.fonts)
	pdf.SetLogger(p.log)
	res := p.Render(doc, layout.Canvas{Width: width, Height: height, DPIScale: dpiScale}, pdf)
	return pdf, res
}
