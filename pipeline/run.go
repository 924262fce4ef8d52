package pipeline

import (
	"github.com/charmbracelet/log"

	"midi2struct/config"
	"midi2struct/encode"
	"midi2struct/layout"
	"midi2struct/midi"
	"midi2struct/structure"
)

// Result summarizes one conversion. Intermediate products are kept so
// callers can inspect or preview them.
type Result struct {
	TrackCount      int
	EventsMerged    int
	EventsKept      int
	Timeline        []midi.NoteEvent
	Values          []encode.Value
	Functions       []encode.Function
	Layout          layout.Layout
	TicksPerQuarter uint16
}

// Convert runs every stage except the final write: decode, merge,
// filter, encode, segment, emit. The stages run as one deterministic
// single-threaded pass; each consumes its predecessor's full output.
func Convert(cfg *config.Config, input string) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := encode.ValidateCapacity(cfg); err != nil {
		return nil, err
	}

	file, err := midi.ReadFile(input)
	if err != nil {
		return nil, err
	}
	log.Debug("decoded input", "tracks", len(file.Tracks), "ticksPerQuarter", file.TicksPerQuarter, "length", file.Length)

	merged := midi.Merge(file)
	kept := encode.Filter(merged, cfg)
	log.Debug("built timeline", "merged", len(merged), "kept", len(kept))

	values := encode.Encode(kept, cfg)
	funcs, err := encode.Segment(values, cfg.MaxEventsPerFunc, cfg.Repeat)
	if err != nil {
		return nil, err
	}
	log.Debug("encoded", "values", len(values), "functions", len(funcs))

	lay := layout.Emit(funcs, cfg.BaseAddress, cfg.NotesPerValue)

	return &Result{
		TrackCount:      len(file.Tracks),
		EventsMerged:    len(merged),
		EventsKept:      len(kept),
		Timeline:        kept,
		Values:          values,
		Functions:       funcs,
		Layout:          lay,
		TicksPerQuarter: file.TicksPerQuarter,
	}, nil
}

// Document builds the output container for a conversion result.
func Document(cfg *config.Config, res *Result) *structure.Document {
	return &structure.Document{
		Version:       cfg.StructureVersion,
		MinPitch:      cfg.MinPitch,
		NotesPerValue: cfg.NotesPerValue,
		Repeat:        cfg.Repeat,
		Blocks:        res.Layout.Blocks,
	}
}

// Run converts input and writes the structure to cfg.Output. The
// whole conversion either completes or fails with nothing committed.
func Run(cfg *config.Config, input string) (*Result, error) {
	res, err := Convert(cfg, input)
	if err != nil {
		return nil, err
	}
	if err := structure.Write(Document(cfg, res), cfg.Output); err != nil {
		return nil, err
	}
	return res, nil
}
