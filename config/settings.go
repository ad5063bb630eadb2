package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// Settings is the typed, resolved configuration of one process run. It is
// never modified after Resolve returns it.
type Settings struct {
	SettingsModule string

	Debug   bool
	DebugJS bool
	DebugDB bool

	ServerHost string
	Port       int

	Database  DatabaseURL
	Memcached Optional[HostPort]

	SecretKey   string
	AnalyticsID Optional[string]

	DeployHost       Optional[string]
	DeployVirtualenv Optional[string]
	StaticRoot       Optional[string]

	AllowedHosts []string
	InternalIPs  []string
}

// HostPort is a network endpoint.
type HostPort struct {
	Host string
	Port int
}

func (hp HostPort) String() string {
	return net.JoinHostPort(hp.Host, strconv.Itoa(hp.Port))
}

// Addr returns the listener bind address.
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.ServerHost, strconv.Itoa(s.Port))
}

// CacheBackend names the cache backend the settings select.
func (s *Settings) CacheBackend() string {
	if s.Memcached.IsSet() {
		return "memcached"
	}
	return "local"
}

// Resolve turns a ConfigurationSet into Settings. Every problem found is
// reported; the returned error joins one error per offending key.
func Resolve(set *Set) (*Settings, error) {
	var errs []error

	required := func(key string) string {
		v, ok := set.Lookup(key)
		if !ok || v == "" {
			errs = append(errs, &MissingRequiredConfigError{Key: key})
		}
		return v
	}

	s := &Settings{
		SettingsModule:   required(KeySettingsModule),
		Debug:            flag(set, KeyDebug),
		DebugJS:          flag(set, KeyDebugJS),
		DebugDB:          flag(set, KeyDebugDB),
		ServerHost:       required(KeyServerHost),
		SecretKey:        required(KeySecretKey),
		AnalyticsID:      optionalString(set, KeyAnalyticsID),
		DeployHost:       optionalString(set, KeyDeployHost),
		DeployVirtualenv: optionalString(set, KeyDeployVirtualenv),
		StaticRoot:       optionalString(set, KeyStaticRoot),
		AllowedHosts:     list(set, KeyAllowedHosts),
		InternalIPs:      list(set, KeyInternalIPs),
	}

	if raw := required(KeyPort); raw != "" {
		port, err := parsePort(KeyPort, raw)
		if err != nil {
			errs = append(errs, err)
		}
		s.Port = port
	}

	if raw := required(KeyDatabaseURL); raw != "" {
		db, err := ParseDatabaseURL(raw)
		if err != nil {
			errs = append(errs, err)
		}
		s.Database = db
	}

	if raw := set.Get(KeyMemcachedLocation); raw != "" {
		hp, err := parseHostPort(KeyMemcachedLocation, raw, defaultMemcachedPort)
		if err != nil {
			errs = append(errs, err)
		} else {
			s.Memcached = Some(hp)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// flag is true when key is declared with a non-empty value. An empty value
// and a missing or commented-out declaration are indistinguishable in the
// template, so both read as false.
func flag(set *Set, key string) bool {
	return set.Get(key) != ""
}

func optionalString(set *Set, key string) Optional[string] {
	if v := set.Get(key); v != "" {
		return Some(v)
	}
	return None[string]()
}

func list(set *Set, key string) []string {
	raw := set.Get(key)
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parsePort(key, raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil || port < 0 || port > 65535 {
		return 0, &InvalidPortError{Key: key, Value: raw}
	}
	return port, nil
}

// parseHostPort accepts host, host:port, [v6] and [v6]:port. The default port
// is used only when no port is written.
func parseHostPort(key, raw string, defPort int) (HostPort, error) {
	invalid := func(reason string) (HostPort, error) {
		return HostPort{}, &InvalidAddressError{Key: key, Value: raw, Reason: reason}
	}

	host, port := raw, ""
	switch {
	case strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		host = raw[1 : len(raw)-1]
	case strings.Contains(raw, ":"):
		var err error
		if host, port, err = net.SplitHostPort(raw); err != nil {
			return invalid("expected host:port")
		}
	}

	if host == "" || strings.ContainsAny(host, " \t/[]") {
		return invalid("bad host")
	}
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return invalid("bad IPv6 address")
	}

	p := defPort
	if port != "" {
		var err error
		if p, err = parsePort(key, port); err != nil {
			return HostPort{}, err
		}
	}
	return HostPort{Host: host, Port: p}, nil
}
