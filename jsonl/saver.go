package jsonl

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// Saver appends Record values to JSONL files.
type Saver struct{}

// NewSaver creates a new Saver.
func NewSaver() *Saver {
	return &Saver{}
}

// Save appends records to a JSONL file, creating parent directories if needed.
func (s *Saver) Save(path string, records ...Record) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return s.Write(f, records...)
}

// Write encodes records to w, one per line.
func (s *Saver) Write(w io.Writer, records ...Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
