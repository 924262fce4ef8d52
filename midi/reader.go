package midi

import (
	"bytes"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrTag marks fatal errors from the MIDI input boundary.
const ErrTag = ftag.Kind("input")

// File is a decoded Standard MIDI File reduced to the note timeline:
// per-track event lists with absolute tick times. Nothing downstream
// of this package touches the SMF representation.
type File struct {
	Tracks          [][]NoteEvent
	TicksPerQuarter uint16
	Length          uint64 // tick of the last event across all tracks
}

// ReadFile decodes the SMF at path into per-track note events.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not read input file"), ftag.With(ErrTag))
	}
	return Read(data)
}

// Read decodes SMF bytes into per-track note events. A NoteOn with
// velocity zero decodes as Off. Only metrical (ticks-per-quarter)
// timing is supported; SMPTE timecode files are rejected.
func Read(data []byte) (*File, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("could not parse MIDI file"), ftag.With(ErrTag))
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fault.New("SMPTE timecode timing is not supported", ftag.With(ErrTag))
	}

	f := &File{TicksPerQuarter: ticks.Resolution()}

	for ti, track := range s.Tracks {
		var abs uint64
		var events []NoteEvent
		for _, ev := range track {
			abs += uint64(ev.Delta)

			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteStart(&ch, &key, &vel):
				events = append(events, NoteEvent{Time: abs, Pitch: key, Velocity: vel, Kind: On, Track: ti})
			case ev.Message.GetNoteEnd(&ch, &key):
				events = append(events, NoteEvent{Time: abs, Pitch: key, Kind: Off, Track: ti})
			}
		}
		if abs > f.Length {
			f.Length = abs
		}
		f.Tracks = append(f.Tracks, events)
	}

	return f, nil
}
