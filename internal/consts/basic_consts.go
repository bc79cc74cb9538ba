package consts

const (
	ENV_PRODUCTION  = "production"
	ENV_DEVELOPMENT = "development"
	ENV_TEST        = "test"

	DEFAULT_CONFIG_PATH = "config.yaml"

	// Environment variables merged over the config file.
	ENV_DATABASE_URL = "DATABASE_URL"
	ENV_HTTP_PORT    = "PORT"
	ENV_APP_ENV      = "APP_ENV"
	ENV_CONFIG_PATH  = "CONFIG_PATH"

	KEY_TraceID = "trace_id"
)
