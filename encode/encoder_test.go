package encode

import (
	"testing"

	"midi2struct/config"
	"midi2struct/midi"
)

func TestEncodeSingleNote(t *testing.T) {
	// One note: on-flip then off-flip, both in one group.
	cfg := config.Default()
	events := []midi.NoteEvent{
		{Time: 0, Pitch: 60, Velocity: 100, Kind: midi.On},
		{Time: 10, Pitch: 60, Kind: midi.Off},
	}

	values := Encode(events, cfg)
	if len(values) != 2 {
		t.Fatalf("got %d values, want 2", len(values))
	}

	// Pitch 60 sits in group (60-27)/8 = 4, bit (60-27)%8 = 1.
	if values[0].Group != 4 || values[0].Mask != 1<<1 || values[0].Delta != 0 {
		t.Errorf("value 0 = %+v, want group 4, mask 0b10, delta 0", values[0])
	}
	if values[1].Group != 4 || values[1].Mask != 0 || values[1].Delta != 10 {
		t.Errorf("value 1 = %+v, want group 4, mask 0, delta 10", values[1])
	}
}

func TestEncodeOverlappingSustains(t *testing.T) {
	// Two overlapping notes at one pitch: the state flips on at the
	// first on and off only when the second sustain releases.
	cfg := config.Default()
	events := []midi.NoteEvent{
		{Time: 0, Pitch: 60, Velocity: 100, Kind: midi.On, Track: 0},
		{Time: 5, Pitch: 60, Velocity: 100, Kind: midi.On, Track: 1},
		{Time: 10, Pitch: 60, Kind: midi.Off, Track: 0},
		{Time: 15, Pitch: 60, Kind: midi.Off, Track: 1},
	}

	values := Encode(events, cfg)
	if len(values) != 2 {
		t.Fatalf("got %d values, want 2", len(values))
	}
	if values[0].Tick != 0 || values[1].Tick != 15 {
		t.Errorf("flip ticks are %d, %d; want 0, 15", values[0].Tick, values[1].Tick)
	}
	if values[1].Delta != 15 {
		t.Errorf("value 1 delta = %d, want 15", values[1].Delta)
	}
}

func TestEncodeMultipleGroupsOneTick(t *testing.T) {
	cfg := config.Default()
	cfg.MinPitch = 0
	cfg.MaxPitch = 15
	cfg.NotesPerValue = 8

	events := []midi.NoteEvent{
		{Time: 7, Pitch: 0, Velocity: 100, Kind: midi.On},
		{Time: 7, Pitch: 8, Velocity: 100, Kind: midi.On},
	}

	values := Encode(events, cfg)
	if len(values) != 2 {
		t.Fatalf("got %d values, want 2", len(values))
	}
	if values[0].Group != 0 || values[0].Delta != 7 {
		t.Errorf("value 0 = %+v, want group 0, delta 7", values[0])
	}
	// Second value of the same tick carries a zero delta.
	if values[1].Group != 1 || values[1].Delta != 0 {
		t.Errorf("value 1 = %+v, want group 1, delta 0", values[1])
	}
}

func TestEncodeUnchangedSustainEmitsNothing(t *testing.T) {
	// An on and off for a second pitch in another group must not
	// re-emit the untouched group.
	cfg := config.Default()
	cfg.MinPitch = 0
	cfg.MaxPitch = 15
	cfg.NotesPerValue = 8

	events := []midi.NoteEvent{
		{Time: 0, Pitch: 0, Velocity: 100, Kind: midi.On},
		{Time: 5, Pitch: 8, Velocity: 100, Kind: midi.On},
		{Time: 10, Pitch: 8, Kind: midi.Off},
	}

	values := Encode(events, cfg)
	if len(values) != 3 {
		t.Fatalf("got %d values, want 3", len(values))
	}
	for _, v := range values[1:] {
		if v.Group != 1 {
			t.Errorf("untouched group re-emitted: %+v", v)
		}
	}
}

func TestEncodeWaitValuesBridgeWideGaps(t *testing.T) {
	// notes-per-value 16 leaves 9 delta bits, so anything past 511
	// ticks needs synthetic wait values.
	cfg := config.Default()
	cfg.MinPitch = 0
	cfg.MaxPitch = 15
	cfg.NotesPerValue = 16

	if MaxDelta(16) != 511 {
		t.Fatalf("MaxDelta(16) = %d, want 511", MaxDelta(16))
	}

	events := []midi.NoteEvent{
		{Time: 0, Pitch: 0, Velocity: 100, Kind: midi.On},
		{Time: 1000, Pitch: 0, Kind: midi.Off},
	}

	values := Encode(events, cfg)
	if len(values) != 3 {
		t.Fatalf("got %d values, want 3 (on, wait, off)", len(values))
	}

	wait := values[1]
	if wait.Delta != 511 || wait.Mask != 1 {
		t.Errorf("wait value = %+v, want delta 511 re-asserting mask 1", wait)
	}
	final := values[2]
	if final.Delta != 489 || final.Mask != 0 {
		t.Errorf("final value = %+v, want delta 489, mask 0", final)
	}
}

func TestEncodePaddedLastGroup(t *testing.T) {
	// Range of 10 pitches with 8 per value: the second group only
	// carries two real slots, the rest stay zero.
	cfg := config.Default()
	cfg.MinPitch = 0
	cfg.MaxPitch = 9
	cfg.NotesPerValue = 8

	if cfg.GroupCount() != 2 {
		t.Fatalf("GroupCount() = %d, want 2", cfg.GroupCount())
	}

	events := []midi.NoteEvent{
		{Time: 0, Pitch: 9, Velocity: 100, Kind: midi.On},
	}

	values := Encode(events, cfg)
	if len(values) != 1 {
		t.Fatalf("got %d values, want 1", len(values))
	}
	if values[0].Group != 1 || values[0].Mask != 1<<1 {
		t.Errorf("value = %+v, want group 1, mask 0b10", values[0])
	}
}

func TestPack(t *testing.T) {
	v := Value{Group: 3, Delta: 5, Mask: 0b101}
	want := uint32(0b101) | 3<<8 | 5<<15
	if got := v.Pack(8); got != want {
		t.Errorf("Pack(8) = %#x, want %#x", got, want)
	}
}
