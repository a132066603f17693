// sim/eventstream_test.go
// Copyright(c) 2024-2026 towersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"
)

func TestEventStream(t *testing.T) {
	es := NewEventStream(nil)

	es.Post(Event{})
	sub := es.Subscribe()
	if len(sub.Get()) != 0 {
		t.Errorf("events from before Subscribe were reported")
	}

	es.Post(Event{Type: DestinationCompletedEvent, Callsign: "AAL1"})
	es.Post(Event{Type: AircraftRemovedEvent, Callsign: "AAL1"})
	s := sub.Get()
	if len(s) != 2 {
		t.Fatalf("got %d events, expected 2", len(s))
	}
	if s[0].Type != DestinationCompletedEvent {
		t.Errorf("expected completion event, got %v", s[0])
	}
	if s[1].Type != AircraftRemovedEvent {
		t.Errorf("expected removal event, got %v", s[1])
	}

	if len(sub.Get()) != 0 {
		t.Errorf("events reported twice")
	}
}

func TestEventStreamMultipleSubscribers(t *testing.T) {
	es := NewEventStream(nil)

	a := es.Subscribe()
	es.Post(Event{Type: StatusMessageEvent, Message: "first"})
	b := es.Subscribe()
	es.Post(Event{Type: StatusMessageEvent, Message: "second"})

	if got := a.Get(); len(got) != 2 {
		t.Errorf("subscriber a got %d events, expected 2", len(got))
	}
	if got := b.Get(); len(got) != 1 || got[0].Message != "second" {
		t.Errorf("subscriber b got %v, expected only the second event", got)
	}

	b.Unsubscribe()
	es.Post(Event{Type: StatusMessageEvent, Message: "third"})
	if got := a.Get(); len(got) != 1 || got[0].Message != "third" {
		t.Errorf("subscriber a got %v after unsubscribe of b", got)
	}
}

func TestEventStreamCompact(t *testing.T) {
	es := NewEventStream(nil)
	sub := es.Subscribe()

	next := 0
	for i := 0; i < 100; i++ {
		for j := 0; j < 50; j++ {
			es.Post(Event{Score: next + 1})
			next++
		}
		for i, ev := range sub.Get() {
			if want := next - 50 + i + 1; ev.Score != want {
				t.Fatalf("got score %d, expected %d", ev.Score, want)
			}
		}
		es.compact()
	}

	if cap(es.events) > next/2 {
		t.Errorf("is compaction not happening? len %d cap %d", len(es.events), cap(es.events))
	}
}
