package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/ir"
)

// WriteRecording encodes rec as indented JSON.
func WriteRecording(rec *ir.Recording, w io.Writer) error {
	return encode(w, rec)
}

// ExportRecording writes rec to a .json file at path.
func ExportRecording(rec *ir.Recording, path string) error {
	return export(path, func(w io.Writer) error { return WriteRecording(rec, w) })
}

// WriteCounts encodes per-group element counts.
func WriteCounts(counts map[string]int, w io.Writer) error {
	return encode(w, counts)
}

// ExportCounts writes per-group element counts to a .json file at path.
func ExportCounts(counts map[string]int, path string) error {
	return export(path, func(w io.Writer) error { return WriteCounts(counts, w) })
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "encode")
	}
	return nil
}

func export(path string, write func(io.Writer) error) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := errors.ValidateExtension(path, ".json"); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, err, "close %s", path)
	}
	return nil
}
