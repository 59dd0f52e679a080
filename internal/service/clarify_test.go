package service

import (
	"testing"
	"time"

	"mentrachess/internal/core"
	"mentrachess/internal/voice"
)

func testClarification() *voice.ClarificationData {
	target, _ := core.ToCoordinate("d1")
	a1, _ := core.ToCoordinate("a1")
	h1, _ := core.ToCoordinate("h1")
	return voice.NewClarification(core.Rook, target, []voice.Candidate{
		{From: a1, Piece: core.Piece{Type: core.Rook, Color: core.ColorWhite}},
		{From: h1, Piece: core.Piece{Type: core.Rook, Color: core.ColorWhite}},
	}, time.Minute)
}

func TestClarifyRegistryLifecycle(t *testing.T) {
	r := NewClarifyRegistry()
	defer r.Shutdown()

	if _, ok := r.Get("g1"); ok {
		t.Fatalf("empty registry returned a pending clarification")
	}

	data := testClarification()
	r.Put("g1", data, time.Minute)

	got, ok := r.Get("g1")
	if !ok || got != data {
		t.Fatalf("Get returned %v, %v", got, ok)
	}

	// Get does not consume the entry.
	if _, ok := r.Get("g1"); !ok {
		t.Fatalf("entry consumed by Get")
	}

	resolved, ok := r.Resolve("g1")
	if !ok || resolved != data {
		t.Fatalf("Resolve returned %v, %v", resolved, ok)
	}
	if _, ok := r.Get("g1"); ok {
		t.Fatalf("entry survived Resolve")
	}
	if _, ok := r.Resolve("g1"); ok {
		t.Fatalf("second Resolve succeeded")
	}
}

func TestClarifyRegistryExpiry(t *testing.T) {
	r := NewClarifyRegistry()
	defer r.Shutdown()

	r.Put("g1", testClarification(), 20*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := r.Get("g1"); !ok {
			return // expired and discarded, game back to normal
		}
		if time.Now().After(deadline) {
			t.Fatalf("clarification still pending well past its TTL")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClarifyRegistryReplace(t *testing.T) {
	r := NewClarifyRegistry()
	defer r.Shutdown()

	first := testClarification()
	second := testClarification()

	// The second command replaces the first; the first's timer must not
	// kill the replacement when it fires.
	r.Put("g1", first, 20*time.Millisecond)
	r.Put("g1", second, time.Minute)

	time.Sleep(60 * time.Millisecond)

	got, ok := r.Get("g1")
	if !ok {
		t.Fatalf("replacement clarification was discarded by the stale timer")
	}
	if got != second {
		t.Fatalf("registry holds the wrong clarification")
	}
}

func TestClarifyRegistryDiscard(t *testing.T) {
	r := NewClarifyRegistry()
	defer r.Shutdown()

	r.Put("g1", testClarification(), time.Minute)
	r.Put("g2", testClarification(), time.Minute)

	r.Discard("g1")

	if _, ok := r.Get("g1"); ok {
		t.Fatalf("discarded clarification still pending")
	}
	if _, ok := r.Get("g2"); !ok {
		t.Fatalf("Discard removed the wrong game's entry")
	}
}
