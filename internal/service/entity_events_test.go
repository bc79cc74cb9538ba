package service

import (
	"testing"

	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

func TestRecordPublishesEntityTopic(t *testing.T) {
	bus := eventbus.NewBus()
	rec := NewEntityEvents(bus)

	var got []eventbus.Event
	bus.Subscribe(consts.EntityTopic("product", "created"), func(evt eventbus.Event) {
		got = append(got, evt)
	})

	if err := rec.Record("product", "created", 11, map[string]any{"name": "widget"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	p := got[0].Payload.(eventbus.EntityPayload)
	if p.Entity != "product" || p.Action != "created" || p.ID != 11 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestRecordRejectsUnknownNames(t *testing.T) {
	rec := NewEntityEvents(eventbus.NewBus())
	if err := rec.Record("widget", "created", 1, nil); err == nil {
		t.Fatalf("unknown entity must be rejected")
	}
	if err := rec.Record("product", "vanished", 1, nil); err == nil {
		t.Fatalf("unknown action must be rejected")
	}
}
