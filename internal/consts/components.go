package consts

const (
	COMPONENT_LOGGING        = "logging"
	COMPONENT_DATABASE       = "database"
	COMPONENT_REALTIME       = "realtime"
	COMPONENT_BRIDGE         = "bridge"
	COMPONENT_HTTP_SERVER    = "http_server"
	COMPONENT_PROMETHEUS     = "prometheus"
	COMPONENT_TELEMETRY      = "telemetry"
	COMPONENT_SNAPSHOT_CACHE = "snapshot_cache"
)
