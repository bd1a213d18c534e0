package provider

import (
	"fmt"
	"testing"
)

func TestHistory_AddBounded(t *testing.T) {
	h := NewHistory(10)

	for i := 0; i < 12; i++ {
		h.Add(fmt.Sprintf("user %d", i), fmt.Sprintf("assistant %d", i))
	}

	if got := h.Len(); got != 10 {
		t.Fatalf("Len() = %d, want 10", got)
	}

	recent := h.Recent(10)
	if got := recent[0].User; got != "user 2" {
		t.Errorf("oldest kept = %q, want %q", got, "user 2")
	}
	if got := recent[9].Assistant; got != "assistant 11" {
		t.Errorf("newest kept = %q, want %q", got, "assistant 11")
	}
}

func TestHistory_DefaultLimit(t *testing.T) {
	for _, max := range []int{0, -5} {
		h := NewHistory(max)
		for i := 0; i < 15; i++ {
			h.Add("u", "a")
		}
		if got := h.Len(); got != defaultHistoryLimit {
			t.Errorf("NewHistory(%d): Len() = %d, want %d", max, got, defaultHistoryLimit)
		}
	}
}

func TestHistory_Recent(t *testing.T) {
	h := NewHistory(10)
	h.Add("first", "one")
	h.Add("second", "two")
	h.Add("third", "three")

	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d exchanges", len(recent))
	}
	if recent[0].User != "second" || recent[1].User != "third" {
		t.Errorf("Recent(2) = [%q, %q], want oldest-first [second, third]", recent[0].User, recent[1].User)
	}

	if got := h.Recent(10); len(got) != 3 {
		t.Errorf("Recent(10) returned %d exchanges, want all 3", len(got))
	}
	if got := h.Recent(0); got != nil {
		t.Errorf("Recent(0) = %v, want nil", got)
	}
	if got := h.Recent(-1); got != nil {
		t.Errorf("Recent(-1) = %v, want nil", got)
	}
}

func TestHistory_RecentIsACopy(t *testing.T) {
	h := NewHistory(10)
	h.Add("user", "assistant")

	recent := h.Recent(1)
	recent[0].User = "mutated"

	if got := h.Recent(1)[0].User; got != "user" {
		t.Errorf("internal exchange mutated through Recent: %q", got)
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(10)
	h.Add("user", "assistant")
	h.Clear()

	if got := h.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	if got := h.Recent(5); got != nil {
		t.Errorf("Recent after Clear = %v, want nil", got)
	}
}
