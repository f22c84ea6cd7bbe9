package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/starbridge/pkg/errors"
	"github.com/matzehuels/starbridge/pkg/ir"
)

// ReadRecording decodes and validates a recording from r and finalizes it.
// ReadRecording does not close r.
func ReadRecording(r io.Reader) (*ir.Recording, error) {
	var rec ir.Recording
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode recording")
	}
	if rec.Canvas.Width <= 0 || rec.Canvas.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "recording canvas has no size")
	}
	return rec.Finalize(), nil
}

// ImportRecording reads a recording file.
func ImportRecording(path string) (*ir.Recording, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecording(f)
}

// ReadCounts decodes an expected-count object. Negative counts are rejected.
func ReadCounts(r io.Reader) (map[string]int, error) {
	var counts map[string]int
	if err := json.NewDecoder(r).Decode(&counts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode counts")
	}
	for g, n := range counts {
		if n < 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "group %q has negative count %d", g, n)
		}
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return counts, nil
}

// ImportCounts reads an expected-count file.
func ImportCounts(path string) (map[string]int, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCounts(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return f, nil
}
