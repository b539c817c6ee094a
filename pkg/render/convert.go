package render

import (
	"bytes"
	"fmt"
	"os/exec"
)

const converterBinary = "rsvg-convert"

// ToPNG converts SVG bytes to PNG at the given scale factor.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1.0
	}
	return convert(svg, "--format=png", fmt.Sprintf("--zoom=%g", scale))
}

// ToPDF converts SVG bytes to a single-page PDF.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "--format=pdf")
}

// Available reports whether the external SVG converter is installed.
// Callers can check this up front to fail fast before rendering.
func Available() bool {
	_, err := exec.LookPath(converterBinary)
	return err == nil
}

func convert(svg []byte, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(converterBinary); err != nil {
		return nil, fmt.Errorf("%s not found (install librsvg): %w", converterBinary, err)
	}

	cmd := exec.Command(converterBinary, args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", converterBinary, err, stderr.String())
	}
	return out.Bytes(), nil
}
