// Package service holds cross-component services published through the
// service registry rather than the component container.
package service

import (
	"fmt"

	"github.com/orcaclubpro/trenddrop-sub002/internal/consts"
	"github.com/orcaclubpro/trenddrop-sub002/internal/eventbus"
)

// ServiceEntityEvents is the registry name of the recorder.
const ServiceEntityEvents = "entity_events"

// EntityEvents turns entity mutations into bus events. Scrapers and API
// handlers call Record after a write; the bridge and the snapshot cache
// pick the event up from there.
type EntityEvents struct {
	bus *eventbus.Bus
}

func NewEntityEvents(bus *eventbus.Bus) *EntityEvents {
	return &EntityEvents{bus: bus}
}

// Record publishes one entity event. entity and action must be known
// values; unknown ones are rejected so a typo cannot create a topic no
// subscriber listens on.
func (s *EntityEvents) Record(entity, action string, id int64, data any) error {
	if !contains(consts.Entities(), entity) {
		return fmt.Errorf("unknown entity: %s", entity)
	}
	if !contains(consts.Actions(), action) {
		return fmt.Errorf("unknown action: %s", action)
	}
	s.bus.Publish(consts.EntityTopic(entity, action), eventbus.EntityPayload{
		Entity: entity,
		Action: action,
		ID:     id,
		Data:   data,
	})
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
