package input

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTrackerUpdateComputesEdges(t *testing.T) {
	var tr Tracker

	d := tr.Update(NewSnapshot("a", "enter"))
	if diff := cmp.Diff([]Key{"a", "enter"}, d.Pressed.Keys()); diff != "" {
		t.Fatalf("first frame pressed mismatch (-want +got):\n%s", diff)
	}
	if len(d.Released) != 0 {
		t.Fatalf("first frame released = %v, want empty", d.Released.Keys())
	}

	d = tr.Update(NewSnapshot("a"))
	if len(d.Pressed) != 0 {
		t.Fatalf("pressed = %v, want empty", d.Pressed.Keys())
	}
	if diff := cmp.Diff([]Key{"enter"}, d.Released.Keys()); diff != "" {
		t.Fatalf("released mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Key{"a"}, d.Down.Keys()); diff != "" {
		t.Fatalf("down mismatch (-want +got):\n%s", diff)
	}

	d = tr.Update(NewSnapshot())
	if diff := cmp.Diff([]Key{"a"}, d.Released.Keys()); diff != "" {
		t.Fatalf("released after all up mismatch (-want +got):\n%s", diff)
	}
}

func TestTrackerReplacesPreviousSnapshot(t *testing.T) {
	var tr Tracker
	tr.Update(NewSnapshot("a"))
	tr.Update(NewSnapshot("b"))

	// "a" 已在上一帧释放，不应再次出现在 Released 中。
	d := tr.Update(NewSnapshot("b"))
	if len(d.Released) != 0 || len(d.Pressed) != 0 {
		t.Fatalf("unexpected edges: pressed=%v released=%v", d.Pressed.Keys(), d.Released.Keys())
	}
}

func TestTrackerResultNotAliasedWithInput(t *testing.T) {
	var tr Tracker
	snap := NewSnapshot("x")
	d := tr.Update(snap)
	delete(snap, "x")
	if !d.Down.Has("x") {
		t.Fatalf("Down should not alias caller snapshot")
	}
	d = tr.Update(NewSnapshot("x"))
	if d.Pressed.Has("x") {
		t.Fatalf("x was down in the previous frame and must not be pressed again")
	}
}

func TestTrackerPartitionProperty(t *testing.T) {
	universe := []Key{"a", "b", "c", "d", "enter", "esc"}
	rng := rand.New(rand.NewSource(7))

	var tr Tracker
	prev := NewSnapshot()
	for frame := 0; frame < 500; frame++ {
		cur := NewSnapshot()
		for _, k := range universe {
			if rng.Intn(2) == 0 {
				cur[k] = struct{}{}
			}
		}
		d := tr.Update(cur)

		for k := range d.Pressed {
			if d.Released.Has(k) {
				t.Fatalf("frame %d: key %q both pressed and released", frame, k)
			}
		}
		for _, k := range universe {
			if !prev.Has(k) && !cur.Has(k) {
				continue
			}
			if !d.Pressed.Has(k) && !d.Released.Has(k) && !d.Down.Has(k) {
				t.Fatalf("frame %d: key %q unaccounted for", frame, k)
			}
		}
		prev = cur
	}
}

func TestSamplerTakeStartsNewFrame(t *testing.T) {
	var s Sampler
	s.Observe("enter")
	s.Observe("a")
	s.Observe("")

	got := s.Take()
	if diff := cmp.Diff([]Key{"a", "enter"}, got.Keys()); diff != "" {
		t.Fatalf("first frame mismatch (-want +got):\n%s", diff)
	}
	if got := s.Take(); len(got) != 0 {
		t.Fatalf("second frame = %v, want empty", got.Keys())
	}
}

func TestSamplerAndTrackerReleaseEnterOnNextFrame(t *testing.T) {
	var (
		s  Sampler
		tr Tracker
	)
	s.Observe(KeyEnter)
	if d := tr.Update(s.Take()); !d.Pressed.Has(KeyEnter) {
		t.Fatalf("enter should be pressed in the frame it was reported")
	}
	if d := tr.Update(s.Take()); !d.Released.Has(KeyEnter) {
		t.Fatalf("enter should be released on the following frame")
	}
}
