package midi

// Note event kinds
type Kind uint8

const (
	On Kind = iota
	Off
)

func (k Kind) String() string {
	if k == On {
		return "on"
	}
	return "off"
}

// NoteEvent is one note transition on the timeline. Events are
// immutable once produced by Merge.
type NoteEvent struct {
	Time     uint64 // absolute tick
	Pitch    uint8
	Velocity uint8
	Kind     Kind
	Track    int
}
