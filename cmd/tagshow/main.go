package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tagflow/pkg/layout"
	"tagflow/pkg/props"
	"tagflow/pkg/render"
	"tagflow/pkg/resource"
	"tagflow/pkg/text"
	"tagflow/pkg/visualtest"
)

type options struct {
	width, height int
	output        string
	dpi           float64
	style         string
	dump          bool
	shaped        bool
	fontDir       string
	family        string
	compare       string
}

func main() {
	var opts options
	flag.IntVar(&opts.width, "w", 800, "viewport width in pixels")
	flag.IntVar(&opts.height, "h", 600, "viewport height in pixels")
	flag.StringVar(&opts.output, "o", "output.png", "output file (.png or .pdf)")
	flag.Float64Var(&opts.dpi, "dpi", 1, "device pixel ratio")
	flag.StringVar(&opts.style, "style", "", `layout properties, e.g. "font-size: 14px; margin: 10px"`)
	flag.BoolVar(&opts.dump, "dump", false, "print every positioned segment")
	flag.BoolVar(&opts.shaped, "shaped", false, "measure words with HarfBuzz shaping")
	flag.StringVar(&opts.fontDir, "fonts", "", "directory holding <family>-Regular.ttf and friends")
	flag.StringVar(&opts.family, "family", "", "font family base name inside -fonts")
	flag.StringVar(&opts.compare, "compare", "", "reference PNG to compare the output against")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tagshow [flags] <url>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := run(opts, flag.Arg(0), os.Stdout); err != nil {
		logrus.WithError(err).Fatal("tagshow failed")
	}
}

func run(opts options, url string, stdout io.Writer) error {
	log := logrus.WithField("url", url)

	fonts, roles, err := loadFonts(opts)
	if err != nil {
		return err
	}
	cfg := layout.DefaultConfig()
	cfg.Roles = roles
	if opts.style != "" {
		p, err := props.Parse(opts.style)
		if err != nil {
			log.WithError(err).Warn("ignoring malformed style declarations")
		}
		if err := props.ApplyConfig(&cfg, p); err != nil {
			log.WithError(err).Warn("ignoring invalid style values")
		}
	}

	var m layout.Measurer = fonts
	if opts.shaped {
		m = text.NewShapedMeasurer(fonts)
	}
	engine, err := layout.NewEngine(m, cfg)
	if err != nil {
		return err
	}
	pipeline := resource.NewPipeline(resource.NewFetcher(""), fonts, engine)

	log.Info("fetching")
	doc, err := pipeline.Navigate(context.Background(), url)
	if err != nil {
		return err
	}

	cv := layout.Canvas{
		Width:    float64(opts.width) * opts.dpi,
		Height:   float64(opts.height) * opts.dpi,
		DPIScale: opts.dpi,
	}
	rec := &render.Recorder{}
	painters := render.Multi{}
	if opts.dump {
		painters = append(painters, rec)
	}

	var raster *render.Raster
	var pdf *render.PDF
	if strings.EqualFold(filepath.Ext(opts.output), ".pdf") {
		pdf = render.NewPDF(cv.Width, cv.Height, fonts)
		painters = append(painters, pdf)
	} else {
		raster = render.NewRaster(int(cv.Width), int(cv.Height), fonts)
		painters = append(painters, raster)
	}

	log.WithFields(logrus.Fields{"width": cv.Width, "height": cv.Height}).Info("rendering")
	res := pipeline.Render(doc, cv, painters)
	if opts.dump {
		if err := rec.Dump(stdout); err != nil {
			return err
		}
	}

	if pdf != nil {
		if err := pdf.SavePDF(opts.output); err != nil {
			return err
		}
	} else {
		if err := raster.SavePNG(opts.output); err != nil {
			return errors.Wrap(err, "save png")
		}
		drawn, culled := raster.Stats()
		log.WithFields(logrus.Fields{"drawn": drawn, "culled": culled}).Debug("raster stats")
	}
	log.WithFields(logrus.Fields{
		"title":    doc.Title,
		"segments": len(res.Segments),
		"lines":    res.Lines,
	}).Infof("saved to %s", opts.output)

	if opts.compare != "" && raster != nil {
		copts := visualtest.DefaultOptions()
		copts.FuzzyRadius = 1
		cmp, err := visualtest.CompareFile(raster.Image(), opts.compare, copts)
		if err != nil {
			return err
		}
		if !cmp.Match {
			return errors.Errorf("output differs from %s in %d pixels (%.2f%%)", opts.compare, cmp.DifferentPixels, cmp.DifferentPercent())
		}
		fmt.Fprintf(stdout, "matches %s\n", opts.compare)
	}
	return nil
}

func loadFonts(opts options) (*text.FontSet, map[string]string, error) {
	if opts.fontDir == "" {
		return text.DefaultFontSet(), text.DefaultRoles(), nil
	}
	if opts.family == "" {
		return nil, nil, errors.New("-fonts needs -family")
	}
	fonts := text.NewFontSet()
	roles, err := text.FontConfigFromDir(opts.fontDir, opts.family).Load(fonts, strings.ToLower(opts.family))
	if err != nil {
		return nil, nil, err
	}
	return fonts, roles, nil
}
