package config

// Redacted is a JSON-friendly view of Settings with secrets masked.
type Redacted struct {
	SettingsModule   string           `json:"settings_module"`
	Debug            bool             `json:"debug"`
	DebugJS          bool             `json:"debug_js"`
	DebugDB          bool             `json:"debug_db"`
	Addr             string           `json:"addr"`
	Database         string           `json:"database"`
	DatabaseDriver   string           `json:"database_driver"`
	CacheBackend     string           `json:"cache_backend"`
	Memcached        Optional[string] `json:"memcached_location"`
	SecretKey        string           `json:"secret_key"`
	AnalyticsID      Optional[string] `json:"google_analytics_id"`
	DeployHost       Optional[string] `json:"deploy_host"`
	DeployVirtualenv Optional[string] `json:"deploy_virtualenv"`
	StaticRoot       Optional[string] `json:"static_root"`
	AllowedHosts     []string         `json:"allowed_hosts"`
	InternalIPs      []string         `json:"internal_ips"`
}

// Redact returns the settings with the secret key and database password
// masked.
func (s *Settings) Redact() Redacted {
	r := Redacted{
		SettingsModule:   s.SettingsModule,
		Debug:            s.Debug,
		DebugJS:          s.DebugJS,
		DebugDB:          s.DebugDB,
		Addr:             s.Addr(),
		Database:         s.Database.String(),
		DatabaseDriver:   s.Database.Driver(),
		CacheBackend:     s.CacheBackend(),
		SecretKey:        "********",
		AnalyticsID:      s.AnalyticsID,
		DeployHost:       s.DeployHost,
		DeployVirtualenv: s.DeployVirtualenv,
		StaticRoot:       s.StaticRoot,
		AllowedHosts:     s.AllowedHosts,
		InternalIPs:      s.InternalIPs,
	}
	if hp, ok := s.Memcached.Get(); ok {
		r.Memcached = Some(hp.String())
	}
	return r
}

// RestartRequired lists the settings that differ between old and s but are
// only applied at process start.
func (s *Settings) RestartRequired(old *Settings) []string {
	var changed []string
	if old.Addr() != s.Addr() {
		changed = append(changed, KeyServerHost+"/"+KeyPort)
	}
	if old.Database.DSN() != s.Database.DSN() {
		changed = append(changed, KeyDatabaseURL)
	}
	if old.Memcached != s.Memcached {
		changed = append(changed, KeyMemcachedLocation)
	}
	if old.StaticRoot != s.StaticRoot {
		changed = append(changed, KeyStaticRoot)
	}
	return changed
}
