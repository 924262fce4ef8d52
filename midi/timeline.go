package midi

import "sort"

// trackPitch identifies a sustained note while normalizing.
type trackPitch struct {
	track int
	pitch uint8
}

// Merge flattens per-track events into one globally time-ordered
// timeline. Off sorts before On at equal time, so a note released and
// re-struck on the same tick never reads as two overlapping sustains.
// The sort is stable, so same-kind events at one tick keep track
// order. An Off with no outstanding On for its track and pitch is
// malformed input and is dropped.
func Merge(f *File) []NoteEvent {
	total := 0
	for _, tr := range f.Tracks {
		total += len(tr)
	}

	all := make([]NoteEvent, 0, total)
	for _, tr := range f.Tracks {
		all = append(all, tr...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Time != all[j].Time {
			return all[i].Time < all[j].Time
		}
		return all[i].Kind == Off && all[j].Kind == On
	})

	open := make(map[trackPitch]int)
	out := all[:0]
	for _, ev := range all {
		k := trackPitch{ev.Track, ev.Pitch}
		if ev.Kind == On {
			open[k]++
		} else {
			if open[k] == 0 {
				continue
			}
			open[k]--
		}
		out = append(out, ev)
	}

	return out
}
