package main

import (
	"context"
	"flag"
	"image"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"tagflow/pkg/layout"
	"tagflow/pkg/props"
	"tagflow/pkg/resource"
	"tagflow/pkg/text"
)

const (
	viewWidth  = 1024
	viewHeight = 700
)

type browser struct {
	pipeline *resource.Pipeline
	dpi      float64

	win      fyne.Window
	img      *canvas.Image
	scroll   *container.Scroll
	urlEntry *widget.Entry
	status   *widget.Label
	back     *widget.Button
	forward  *widget.Button
}

func main() {
	style := flag.String("style", "", "layout properties")
	dpi := flag.Float64("dpi", 1, "device pixel ratio")
	shaped := flag.Bool("shaped", false, "measure words with HarfBuzz shaping")
	flag.Parse()

	fonts := text.DefaultFontSet()
	cfg := layout.DefaultConfig()
	cfg.Roles = text.DefaultRoles()
	if *style != "" {
		p, err := props.Parse(*style)
		if err != nil {
			logrus.WithError(err).Warn("ignoring malformed style declarations")
		}
		if err := props.ApplyConfig(&cfg, p); err != nil {
			logrus.WithError(err).Warn("ignoring invalid style values")
		}
	}
	var m layout.Measurer = fonts
	if *shaped {
		m = text.NewShapedMeasurer(fonts)
	}
	engine, err := layout.NewEngine(m, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("no usable fonts")
	}

	a := app.New()
	b := &browser{
		pipeline: resource.NewPipeline(resource.NewFetcher(""), fonts, engine),
		dpi:      *dpi,
		win:      a.NewWindow("tagflow"),
	}
	b.build()
	if flag.NArg() > 0 {
		b.urlEntry.SetText(flag.Arg(0))
		b.navigate(flag.Arg(0))
	}
	b.win.ShowAndRun()
}

func (b *browser) build() {
	b.win.Resize(fyne.NewSize(viewWidth, viewHeight+60))

	// Blank initial render target
	b.img = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, viewWidth, viewHeight)))
	b.img.FillMode = canvas.ImageFillOriginal
	b.scroll = container.NewVScroll(b.img)

	b.status = widget.NewLabel("Enter a URL and press Enter")
	b.urlEntry = widget.NewEntry()
	b.urlEntry.SetPlaceHolder("https://example.com")
	b.urlEntry.OnSubmitted = b.navigate

	b.back = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() {
		b.load("back", b.pipeline.Back)
	})
	b.forward = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() {
		b.load("forward", b.pipeline.Forward)
	})
	reload := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		b.load("reload", b.pipeline.Reload)
	})
	b.updateButtons()

	nav := container.NewHBox(b.back, b.forward, reload)
	topBar := container.NewBorder(nil, nil, nav, nil, b.urlEntry)
	b.win.SetContent(container.NewBorder(topBar, b.status, nil, nil, b.scroll))

	// Keep focus on URL entry to prevent Tab freeze with no other focusable widgets
	b.win.Canvas().Focus(b.urlEntry)
}

func (b *browser) navigate(url string) {
	b.load(url, func(ctx context.Context) (*resource.Document, error) {
		return b.pipeline.Navigate(ctx, url)
	})
}

// load runs step off the UI goroutine and shows the resulting document.
func (b *browser) load(what string, step func(context.Context) (*resource.Document, error)) {
	b.status.SetText("Loading " + what + "...")
	go func() {
		doc, err := step(context.Background())
		if err != nil {
			fyne.Do(func() { b.status.SetText("Error: " + err.Error()) })
			return
		}
		target := b.paint(doc)
		fyne.Do(func() {
			b.img.Image = target
			b.img.SetMinSize(fyne.NewSize(float32(target.Bounds().Dx()), float32(target.Bounds().Dy())))
			b.img.Refresh()
			b.scroll.ScrollToTop()
			b.urlEntry.SetText(doc.URL)
			b.status.SetText(doc.URL)
			b.win.SetTitle("tagflow - " + doc.Title)
			b.updateButtons()
		})
	}()
}

// paint lays the document out once to find its height, then paints it into
// an image tall enough to scroll through.
func (b *browser) paint(doc *resource.Document) *image.RGBA {
	width := float64(viewWidth) * b.dpi
	probe := b.pipeline.Render(doc, layout.Canvas{Width: width, Height: viewHeight * b.dpi, DPIScale: b.dpi}, nil)
	height := math.Max(viewHeight*b.dpi, math.Ceil(probe.ContentHeight+2*b.pipeline.Config().Origin.Y))
	target := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	b.pipeline.RenderImage(doc, target, b.dpi)
	return target
}

func (b *browser) updateButtons() {
	if b.pipeline.CanBack() {
		b.back.Enable()
	} else {
		b.back.Disable()
	}
	if b.pipeline.CanForward() {
		b.forward.Enable()
	} else {
		b.forward.Disable()
	}
}
