package encode

import (
	"midi2struct/config"
	"midi2struct/midi"
)

// activeNotes counts sustained notes per pitch so overlapping Ons at
// the same pitch (across tracks) collapse to one sounding state.
type activeNotes [128]int

func (a *activeNotes) apply(ev midi.NoteEvent) {
	if ev.Kind == midi.On {
		a[ev.Pitch]++
	} else if a[ev.Pitch] > 0 {
		a[ev.Pitch]--
	}
}

// mask returns the on/off bits for one pitch group. Pitches past
// MaxPitch pad the last group with zeros.
func (a *activeNotes) mask(group int, cfg *config.Config) uint16 {
	var m uint16
	for bit := 0; bit < cfg.NotesPerValue; bit++ {
		pitch := int(cfg.MinPitch) + group*cfg.NotesPerValue + bit
		if pitch > int(cfg.MaxPitch) {
			break
		}
		if a[pitch] > 0 {
			m |= 1 << bit
		}
	}
	return m
}

// Encode converts the filtered timeline into the minimal sequence of
// notes-changed values. Events sharing a tick form one transition;
// only groups whose on/off mask actually changed emit a value, so
// output size tracks musical activity, not duration. Each value
// carries the tick delta since the previous emitted value (zero
// between values of the same tick). A delta too wide for the value
// format is bridged by wait values that re-assert the group's current
// mask and burn the maximum delta.
func Encode(events []midi.NoteEvent, cfg *config.Config) []Value {
	groups := cfg.GroupCount()
	masks := make([]uint16, groups)
	maxDelta := uint64(MaxDelta(cfg.NotesPerValue))

	var active activeNotes
	var out []Value
	var lastEmit uint64

	for i := 0; i < len(events); {
		tick := events[i].Time
		j := i
		for j < len(events) && events[j].Time == tick {
			active.apply(events[j])
			j++
		}

		for g := 0; g < groups; g++ {
			m := active.mask(g, cfg)
			if m == masks[g] {
				continue
			}

			delta := tick - lastEmit
			for delta > maxDelta {
				out = append(out, Value{Tick: tick, Group: uint8(g), Delta: uint32(maxDelta), Mask: masks[g]})
				delta -= maxDelta
			}
			out = append(out, Value{Tick: tick, Group: uint8(g), Delta: uint32(delta), Mask: m})

			masks[g] = m
			lastEmit = tick
		}

		i = j
	}

	return out
}
