package consts

import "fmt"

// Event bus topics. Entity topics are "<entity>:<action>" (product:created,
// trend:updated, ...), built with EntityTopic.
const (
	TOPIC_APP_INITIALIZED      = "app:initialized"
	TOPIC_APP_INIT_FAILED      = "app:initialization_failed"
	TOPIC_APP_SHUTDOWN         = "app:shutdown"
	TOPIC_APP_SHUTDOWN_DONE    = "app:shutdown_complete"
	TOPIC_DB_CONNECTED         = "database:connected"
	TOPIC_DB_DISCONNECTED      = "database:disconnected"
	TOPIC_DB_RECONNECTED       = "database:reconnected"
	TOPIC_DB_CONNECTION_FAILED = "database:connection_failed"
	TOPIC_CLIENT_CONNECTED     = "client:connected"
	TOPIC_CLIENT_DISCONNECTED  = "client:disconnected"
	TOPIC_CLIENT_IDENTIFIED    = "client:identified"
	TOPIC_CLIENT_MESSAGE       = "client:message"
	TOPIC_CLIENT_SNAPSHOT_REQ  = "client:snapshot_request"
	TOPIC_MONITOR_METRICS      = "monitor:metrics"
)

// Tracked entity kinds (see internal/model).
const (
	ENTITY_PRODUCT = "product"
	ENTITY_TREND   = "trend"
	ENTITY_REGION  = "region"
	ENTITY_VIDEO   = "video"
)

// Entity event actions.
const (
	ACTION_CREATED = "created"
	ACTION_UPDATED = "updated"
	ACTION_DELETED = "deleted"
)

func Entities() []string {
	return []string{ENTITY_PRODUCT, ENTITY_TREND, ENTITY_REGION, ENTITY_VIDEO}
}

func Actions() []string {
	return []string{ACTION_CREATED, ACTION_UPDATED, ACTION_DELETED}
}

// EntityTopic returns the bus topic for an entity lifecycle event.
func EntityTopic(entity, action string) string {
	return fmt.Sprintf("%s:%s", entity, action)
}

// ComponentTopic returns the lifecycle topic for a component transition,
// e.g. "component:database:initialized".
func ComponentTopic(name, outcome string) string {
	return fmt.Sprintf("component:%s:%s", name, outcome)
}
