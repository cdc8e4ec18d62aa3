package render

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"tagflow/pkg/layout"
	"tagflow/pkg/text"
)

// Layout works in CSS pixels; canvas works in millimetres and points.
const (
	mmPerPx = 25.4 / 96.0
	ptPerPx = 0.75
)

// PDF paints segments onto a single vector page.
type PDF struct {
	fonts    *text.FontSet
	page     *canvas.Canvas
	ctx      *canvas.Context
	size     layout.Canvas
	families map[string]*canvas.FontFamily
	log      logrus.FieldLogger

	drawn  int
	culled int
}

// NewPDF returns a page of width x height pixels.
func NewPDF(width, height float64, fonts *text.FontSet) *PDF {
	page := canvas.New(width*mmPerPx, height*mmPerPx)
	ctx := canvas.NewContext(page)
	ctx.SetCoordSystem(canvas.CartesianIV)
	return &PDF{
		fonts:    fonts,
		page:     page,
		ctx:      ctx,
		size:     layout.Canvas{Width: width, Height: height},
		families: make(map[string]*canvas.FontFamily),
		log:      logrus.StandardLogger(),
	}
}

func (p *PDF) SetLogger(l logrus.FieldLogger) {
	p.log = l
}

// DrawText places s with its baseline at y.
func (p *PDF) DrawText(fontID, s string, x, y, scale float64, c color.Color) {
	lineHeight := p.fonts.LineSpace(fontID) * scale
	if !p.size.Visible(y, lineHeight) {
		p.culled++
		return
	}
	family, err := p.family(fontID)
	if err != nil {
		p.log.WithError(err).WithField("font", fontID).Warn("pdf: no font family, skipping run")
		return
	}
	face := family.Face(text.ReferenceSize*scale*ptPerPx, c, canvas.FontRegular, canvas.FontNormal)
	line := canvas.NewTextLine(face, s, canvas.Left)
	p.ctx.DrawText(x*mmPerPx, y*mmPerPx, line)
	p.drawn++
}

// family returns the canvas family for the active instance of fontID. Each
// weight instance gets its own family.
func (p *PDF) family(fontID string) (*canvas.FontFamily, error) {
	data, weight, err := p.fonts.Source(fontID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s@%g", fontID, weight)
	if fam, ok := p.families[key]; ok {
		return fam, nil
	}
	fam := canvas.NewFontFamily(key)
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, errors.Wrapf(err, "load %s into pdf", key)
	}
	p.families[key] = fam
	return fam, nil
}

// Stats returns how many runs were drawn and culled.
func (p *PDF) Stats() (drawn, culled int) {
	return p.drawn, p.culled
}

// Encode writes the page as a PDF document.
func (p *PDF) Encode(w io.Writer) error {
	writer := pdf.New(w, p.size.Width*mmPerPx, p.size.Height*mmPerPx, nil)
	p.page.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}

func (p *PDF) SavePDF(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create pdf")
	}
	if err := p.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
