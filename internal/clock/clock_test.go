package clock

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewFixed(at)
	if !c.Now().Equal(at) {
		t.Fatalf("expected %v, got %v", at, c.Now())
	}
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewFake(start)

	c.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !c.Now().Equal(want) {
		t.Errorf("expected %v after advance, got %v", want, c.Now())
	}

	c.Advance(-time.Hour)
	if want := start.Add(90 * time.Minute); !c.Now().Equal(want) {
		t.Errorf("negative advance moved the clock to %v", c.Now())
	}

	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("expected %v after set, got %v", start, c.Now())
	}
}

func TestSystemClockIsUTC(t *testing.T) {
	if loc := NewSystem().Now().Location(); loc != time.UTC {
		t.Errorf("expected UTC, got %v", loc)
	}
}
