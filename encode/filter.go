package encode

import (
	"midi2struct/config"
	"midi2struct/midi"
)

// Filter drops events outside the configured pitch bounds, and On
// events below the velocity floor. When an On is dropped, its paired
// Off is dropped too, so sustain counts stay balanced downstream.
// Dropping is policy, not an error.
func Filter(events []midi.NoteEvent, cfg *config.Config) []midi.NoteEvent {
	type trackPitch struct {
		track int
		pitch uint8
	}

	// On events that passed and still await their Off.
	passed := make(map[trackPitch]int)

	out := make([]midi.NoteEvent, 0, len(events))
	for _, ev := range events {
		if ev.Pitch < cfg.MinPitch || ev.Pitch > cfg.MaxPitch {
			continue
		}

		k := trackPitch{ev.Track, ev.Pitch}
		if ev.Kind == midi.On {
			if ev.Velocity < cfg.MinVelocity {
				continue
			}
			passed[k]++
		} else {
			if passed[k] == 0 {
				continue
			}
			passed[k]--
		}
		out = append(out, ev)
	}

	return out
}
