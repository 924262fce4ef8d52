package structure

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"midi2struct/layout"
)

// ErrTag marks output destination failures.
const ErrTag = ftag.Kind("output")

// Document is the serialized container consumed by the host
// simulation. MinPitch and NotesPerValue let the host map a block's
// group and mask bits back to pitches.
type Document struct {
	Version       int            `json:"version"`
	MinPitch      uint8          `json:"minPitch"`
	NotesPerValue int            `json:"notesPerValue"`
	Repeat        bool           `json:"repeat"`
	Blocks        []layout.Block `json:"blocks"`
}

// Encode serializes the document to its on-disk form.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not serialize structure"), ftag.With(ErrTag))
	}
	return append(data, '\n'), nil
}

// Write serializes the document to path, or to stdout when path is
// "-". File output goes through a temp file in the destination
// directory and is renamed into place only on success, so a failed
// run never leaves a partial structure behind.
func Write(doc *Document, path string) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	if path == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fault.Wrap(err, fmsg.With("could not write structure to stdout"), ftag.With(ErrTag))
		}
		return nil
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".midi2struct-*")
	if err != nil {
		return fault.Wrap(err, fmsg.With("could not create output file"), ftag.With(ErrTag))
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fault.Wrap(err, fmsg.With("could not write structure"), ftag.With(ErrTag))
	}
	// CreateTemp opens 0600; the structure is not a secret.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fault.Wrap(err, fmsg.With("could not set output permissions"), ftag.With(ErrTag))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fault.Wrap(err, fmsg.With("could not write structure"), ftag.With(ErrTag))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fault.Wrap(err, fmsg.With("could not move structure into place"), ftag.With(ErrTag))
	}

	return nil
}
