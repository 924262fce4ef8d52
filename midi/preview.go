package midi

import (
	"context"
	"strings"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/smf"
)

const previewBPM = 120

// OutPorts returns the names of available MIDI output ports. Port
// enumeration runs behind a timeout because some backends hang
// (CoreMIDI needs: sudo killall coreaudiod midiserver).
func OutPorts() ([]string, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case ports := <-ch:
		names := make([]string, 0, len(ports))
		for _, p := range ports {
			names = append(names, p.String())
		}
		return names, nil
	case <-time.After(3 * time.Second):
		return nil, fault.New("timed out enumerating MIDI ports", ftag.With(ErrTag))
	}
}

// Preview plays a merged timeline out the first MIDI output port
// whose name contains portName (case-insensitive), so an encoding can
// be audited by ear before the structure is deployed. Blocks until
// the timeline ends or ctx is cancelled; cancellation releases any
// sounding notes.
func Preview(ctx context.Context, events []NoteEvent, ticksPerQuarter uint16, portName string) error {
	out, err := findOutPort(portName)
	if err != nil {
		return err
	}

	send, err := gomidi.SendTo(out)
	if err != nil {
		return fault.Wrap(err, fmsg.With("could not open MIDI output port"), ftag.With(ErrTag))
	}
	defer gomidi.CloseDriver()

	ticks := smf.MetricTicks(ticksPerQuarter)
	sounding := make(map[uint8]int)
	var last uint64

	for _, ev := range events {
		if ev.Time > last {
			select {
			case <-ctx.Done():
				return silence(send, sounding)
			case <-time.After(ticks.Duration(previewBPM, uint32(ev.Time-last))):
			}
			last = ev.Time
		}

		if ev.Kind == On {
			err = send(gomidi.NoteOn(0, ev.Pitch, ev.Velocity))
			sounding[ev.Pitch]++
		} else {
			err = send(gomidi.NoteOff(0, ev.Pitch))
			if sounding[ev.Pitch] > 0 {
				sounding[ev.Pitch]--
			}
		}
		if err != nil {
			silence(send, sounding)
			return fault.Wrap(err, fmsg.With("MIDI send failed"), ftag.With(ErrTag))
		}
	}

	return silence(send, sounding)
}

// silence releases every sounding note. Remaining NoteOffs are still
// attempted after a send failure; the first error is returned.
func silence(send func(gomidi.Message) error, sounding map[uint8]int) error {
	var first error
	for pitch, n := range sounding {
		for ; n > 0; n-- {
			if err := send(gomidi.NoteOff(0, pitch)); err != nil && first == nil {
				first = err
			}
		}
	}
	if first != nil {
		return fault.Wrap(first, fmsg.With("could not release sounding notes"), ftag.With(ErrTag))
	}
	return nil
}

func findOutPort(portName string) (drivers.Out, error) {
	type result struct {
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{outs: gomidi.GetOutPorts()}
	}()

	var outs []drivers.Out
	select {
	case r := <-ch:
		outs = r.outs
	case <-time.After(3 * time.Second):
		return nil, fault.New("timed out enumerating MIDI ports", ftag.With(ErrTag))
	}

	want := strings.ToLower(portName)
	for _, p := range outs {
		if want == "" || strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, fault.New("no matching MIDI output port", fmsg.WithDesc(
		"no matching MIDI output port",
		"No MIDI output port matched. Run with -list-ports to see what is available."), ftag.With(ErrTag))
}
