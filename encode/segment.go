package encode

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"

	"midi2struct/config"
)

// ErrTagCapacity marks ticks whose values cannot fit a single
// function even when it is otherwise empty.
const ErrTagCapacity = ftag.Kind("capacity")

// NoSuccessor terminates the function chain.
const NoSuccessor = -1

// Function is a bounded run of values, the unit of execution in the
// target block VM. Immutable once Segment returns it.
type Function struct {
	Index     int
	Values    []Value
	Successor int
}

// ValidateCapacity checks, before any encoding, that the worst case
// of one value per pitch group in a single tick fits one function.
func ValidateCapacity(cfg *config.Config) error {
	if groups := cfg.GroupCount(); groups > cfg.MaxEventsPerFunc {
		return fault.New(fmt.Sprintf(
			"a single tick can emit up to %d values but max-events-per-func is %d",
			groups, cfg.MaxEventsPerFunc), ftag.With(ErrTagCapacity))
	}
	return nil
}

// Segment splits the encoded value stream into functions of at most
// maxEvents values each, preserving the stream order exactly. Values
// emitted for one tick never straddle a function boundary; a function
// closes early instead. Each function records its successor; the last
// one is terminal, or loops back to the first when repeat is set.
func Segment(values []Value, maxEvents int, repeat bool) ([]Function, error) {
	var funcs []Function
	var cur []Value

	flush := func() {
		funcs = append(funcs, Function{Index: len(funcs), Values: cur})
		cur = nil
	}

	for i := 0; i < len(values); {
		j := i
		for j < len(values) && values[j].Tick == values[i].Tick {
			j++
		}
		run := values[i:j]

		if len(run) > maxEvents {
			return nil, fault.New(fmt.Sprintf(
				"tick %d emits %d values, exceeding max-events-per-func %d",
				values[i].Tick, len(run), maxEvents), ftag.With(ErrTagCapacity))
		}
		if len(cur)+len(run) > maxEvents {
			flush()
		}
		cur = append(cur, run...)
		i = j
	}
	if len(cur) > 0 {
		flush()
	}

	for i := range funcs {
		if i < len(funcs)-1 {
			funcs[i].Successor = i + 1
			continue
		}
		if repeat {
			funcs[i].Successor = 0
		} else {
			funcs[i].Successor = NoSuccessor
		}
	}

	return funcs, nil
}
