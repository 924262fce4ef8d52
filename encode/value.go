package encode

// Values are packed into 32 bits: the group's on/off mask in the low
// NotesPerValue bits, the group index in the next 7 bits, and the
// tick delta in whatever remains. NotesPerValue is capped at 16 so
// the delta always gets at least 9 bits.
const (
	valueBits = 32
	groupBits = 7
)

// Value is one notes-changed instruction. Tick is not part of the
// wire form; it rides along for segmentation and diagnostics.
type Value struct {
	Tick  uint64
	Group uint8
	Delta uint32
	Mask  uint16
}

// Pack folds the value into its fixed-width wire form.
func (v Value) Pack(notesPerValue int) uint32 {
	return uint32(v.Mask) |
		uint32(v.Group)<<notesPerValue |
		v.Delta<<(notesPerValue+groupBits)
}

// MaxDelta returns the largest tick delta one value can carry. Gaps
// beyond it are bridged with wait values, never truncated.
func MaxDelta(notesPerValue int) uint32 {
	return 1<<(valueBits-groupBits-notesPerValue) - 1
}
