package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_PNG(t *testing.T) {
	in := writeInput(t, "<title>t</title><h1>Hello</h1><p>plain <b>bold</b> <i>slanted</i></p>")
	out := filepath.Join(t.TempDir(), "out.png")

	if err := run([]string{in, out, "300", "200"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected a PNG file")
	}
}

func TestRun_PDF(t *testing.T) {
	in := writeInput(t, "one two three")
	out := filepath.Join(t.TempDir(), "out.pdf")

	if err := run([]string{in, out}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("expected a PDF file")
	}
}

func TestRun_Errors(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	if err := run([]string{filepath.Join(t.TempDir(), "missing.html"), out}); err == nil {
		t.Error("expected an error for a missing input")
	}
	in := writeInput(t, "x")
	if err := run([]string{in, out, "wide"}); err == nil {
		t.Error("expected an error for a bad width")
	}
}
