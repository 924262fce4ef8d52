package layout

import "midi2struct/encode"

// Terminal is the successor sentinel in the last block of a
// non-repeating structure.
const Terminal uint32 = 0xFFFFFFFF

// Block is one addressable storage unit: a packed value plus the
// address the executor reads next.
type Block struct {
	Addr  uint32 `json:"addr"`
	Value uint32 `json:"value"`
	Next  uint32 `json:"next"`
}

// Layout is the full address map consumed by the container writer.
// Bases holds each function's first address, in function order.
type Layout struct {
	Blocks []Block
	Bases  []uint32
}

// Emit realizes each function as a contiguous run of blocks starting
// at base. Addresses are assigned in function order (addr = run base
// + value index), so identical function lists always produce
// identical layouts. Within a run each block links to addr+1; the
// last block of a run links to the successor run's base, or Terminal.
func Emit(funcs []encode.Function, base uint32, notesPerValue int) Layout {
	bases := make([]uint32, len(funcs))
	addr := base
	for i, f := range funcs {
		bases[i] = addr
		addr += uint32(len(f.Values))
	}

	var blocks []Block
	for i, f := range funcs {
		for k, v := range f.Values {
			b := Block{
				Addr:  bases[i] + uint32(k),
				Value: v.Pack(notesPerValue),
				Next:  bases[i] + uint32(k) + 1,
			}
			if k == len(f.Values)-1 {
				if f.Successor == encode.NoSuccessor {
					b.Next = Terminal
				} else {
					b.Next = bases[f.Successor]
				}
			}
			blocks = append(blocks, b)
		}
	}

	return Layout{Blocks: blocks, Bases: bases}
}
