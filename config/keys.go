package config

// Recognized environment keys.
const (
	KeySettingsModule    = "DJANGO_SETTINGS_MODULE"
	KeyDebug             = "DEBUG"
	KeyDebugJS           = "DEBUG_JS"
	KeyDebugDB           = "DEBUG_DB"
	KeyServerHost        = "SERVER_HOST"
	KeyPort              = "PORT"
	KeyDatabaseURL       = "DATABASE_URL"
	KeyMemcachedLocation = "MEMCACHED_LOCATION"
	KeySecretKey         = "SECRET_KEY" //nolint:gosec // key name, not a credential
	KeyAnalyticsID       = "GOOGLE_ANALYTICS_ID"
	KeyDeployHost        = "DEPLOY_HOST"
	KeyDeployVirtualenv  = "DEPLOY_VIRTUALENV"
	KeyStaticRoot        = "STATIC_ROOT"
	KeyAllowedHosts      = "ALLOWED_HOSTS"
	KeyInternalIPs       = "INTERNAL_IPS"
)

const defaultMemcachedPort = 11211
