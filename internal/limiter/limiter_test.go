package limiter

import "testing"

func TestGateOneAtATime(t *testing.T) {
	g := New(Options{})

	release, ok := g.Allow("merge")
	if !ok {
		t.Fatal("first allow failed")
	}
	if _, ok := g.Allow("Merge"); ok {
		t.Error("second merge allowed while first in flight")
	}
	if _, ok := g.Allow("split"); !ok {
		t.Error("split blocked by merge")
	}
	if got := g.InFlight("merge"); got != 1 {
		t.Errorf("in flight = %d", got)
	}

	release()
	release()
	if got := g.InFlight("merge"); got != 0 {
		t.Errorf("in flight after release = %d", got)
	}
	if _, ok := g.Allow("merge"); !ok {
		t.Error("allow after release failed")
	}
}

func TestGateCapacity(t *testing.T) {
	g := New(Options{MaxInflight: 2})
	for i := 0; i < 2; i++ {
		if _, ok := g.Allow("k"); !ok {
			t.Fatalf("slot %d refused", i)
		}
	}
	if _, ok := g.Allow("k"); ok {
		t.Error("third slot granted")
	}
}
