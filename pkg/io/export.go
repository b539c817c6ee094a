package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/blockpad/pkg/document"
)

// WriteJSON validates a document and writes it to w as indented JSON.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(d *document.Document, w io.Writer) error {
	if err := document.Validate(d); err != nil {
		return err
	}
	return document.Write(d, w)
}

// ExportFile writes a document to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportFile(d *document.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteJSON(d, f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
