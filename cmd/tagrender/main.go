package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"tagflow/pkg/layout"
	"tagflow/pkg/render"
	"tagflow/pkg/resource"
	"tagflow/pkg/text"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <input.html> <output.png|output.pdf> [width] [height]\n", os.Args[0])
		os.Exit(1)
	}
	if err := run(os.Args[1:]); err != nil {
		logrus.WithError(err).Fatal("render failed")
	}
}

func run(args []string) error {
	inputFile, outputFile := args[0], args[1]

	// Default viewport size
	width, height := 800.0, 2400.0
	if len(args) >= 3 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return errors.Wrap(err, "width")
		}
		width = v
	}
	if len(args) >= 4 {
		v, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return errors.Wrap(err, "height")
		}
		height = v
	}

	fonts := text.DefaultFontSet()
	cfg := layout.DefaultConfig()
	cfg.Roles = text.DefaultRoles()
	engine, err := layout.NewEngine(fonts, cfg)
	if err != nil {
		return err
	}
	pipeline := resource.NewPipeline(resource.NewFetcher(""), fonts, engine)

	doc, err := pipeline.Navigate(context.Background(), inputFile)
	if err != nil {
		return err
	}

	var res layout.Result
	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".pdf":
		pdf, r := pipeline.RenderPDF(doc, width, height, 1)
		if err := pdf.SavePDF(outputFile); err != nil {
			return err
		}
		res = r
	default:
		raster := render.NewRaster(int(width), int(height), fonts)
		r := pipeline.Render(doc, layout.Canvas{Width: width, Height: height, DPIScale: 1}, raster)
		if err := raster.SavePNG(outputFile); err != nil {
			return errors.Wrap(err, "save png")
		}
		res = r
	}

	fmt.Printf("Successfully rendered %s to %s\n", inputFile, outputFile)
	fmt.Printf("Viewport: %.0fx%.0f, %d segments on %d lines\n", width, height, len(res.Segments), res.Lines)
	return nil
}
