package config

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSet(overrides map[string]string) *Set {
	values := map[string]string{
		KeySettingsModule: "msgvis.settings.prod",
		KeyServerHost:     "0.0.0.0",
		KeyPort:           "8000",
		KeyDatabaseURL:    "mysql://u:p@h:3306/n",
		KeySecretKey:      "s3cr3t",
	}
	for k, v := range overrides {
		if v == "<unset>" {
			delete(values, k)
			continue
		}
		values[k] = v
	}
	return NewSet(values)
}

func TestResolve_SampleFile(t *testing.T) {
	set, err := Parse(strings.NewReader(sampleEnv), "sample")
	require.NoError(t, err)

	s, err := Resolve(set)
	require.NoError(t, err)

	assert.Equal(t, "msgvis.settings.prod", s.SettingsModule)
	assert.False(t, s.Debug, "commented DEBUG resolves to false")
	assert.False(t, s.DebugJS, "empty DEBUG_JS resolves to false")
	assert.Equal(t, "0.0.0.0:8000", s.Addr())
	assert.Equal(t, "s3cr3t=with=equals", s.SecretKey)
	assert.Equal(t, []string{"localhost", "example.com"}, s.AllowedHosts)
	assert.Equal(t, []string{}, s.InternalIPs)
	assert.False(t, s.Memcached.IsSet())
	assert.Equal(t, "local", s.CacheBackend())
}

func TestResolve_DatabaseURL(t *testing.T) {
	s, err := Resolve(validSet(nil))
	require.NoError(t, err)

	assert.Equal(t, DatabaseURL{
		Scheme:   "mysql",
		User:     "u",
		Password: "p",
		Host:     "h",
		Port:     3306,
		Name:     "n",
		Options:  url.Values{},
	}, s.Database)
}

func TestResolve_DebugFlags(t *testing.T) {
	s, err := Resolve(validSet(map[string]string{
		KeyDebug:   "1",
		KeyDebugJS: "",
		KeyDebugDB: "yes",
	}))
	require.NoError(t, err)
	assert.True(t, s.Debug)
	assert.False(t, s.DebugJS)
	assert.True(t, s.DebugDB)
}

func TestResolve_Memcached(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  HostPort
		isSet bool
	}{
		{"absent", "<unset>", HostPort{}, false},
		{"empty", "", HostPort{}, false},
		{"host and port", "cache.internal:11311", HostPort{"cache.internal", 11311}, true},
		{"default port", "cache.internal", HostPort{"cache.internal", 11211}, true},
		{"ipv6", "[::1]:11211", HostPort{"::1", 11211}, true},
		{"ipv6 default port", "[::1]", HostPort{"::1", 11211}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Resolve(validSet(map[string]string{KeyMemcachedLocation: tt.value}))
			require.NoError(t, err)
			got, ok := s.Memcached.Get()
			assert.Equal(t, tt.isSet, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_MemcachedInvalid(t *testing.T) {
	for _, raw := range []string{"::1:11211", "cache:11211:extra", "a b c", ":11211", "[::1"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Resolve(validSet(map[string]string{KeyMemcachedLocation: raw}))

			var ae *InvalidAddressError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, KeyMemcachedLocation, ae.Key)
		})
	}

	_, err := Resolve(validSet(map[string]string{KeyMemcachedLocation: "cache:abc"}))
	var pe *InvalidPortError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KeyMemcachedLocation, pe.Key)
}

func TestResolve_Lists(t *testing.T) {
	s, err := Resolve(validSet(map[string]string{
		KeyAllowedHosts: " localhost , example.com,,",
		KeyInternalIPs:  "",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost", "example.com"}, s.AllowedHosts)
	assert.Empty(t, s.InternalIPs)
}

func TestResolve_OptionalStrings(t *testing.T) {
	s, err := Resolve(validSet(map[string]string{
		KeyAnalyticsID: "UA-1234-1",
		KeyStaticRoot:  "",
	}))
	require.NoError(t, err)

	id, ok := s.AnalyticsID.Get()
	assert.True(t, ok)
	assert.Equal(t, "UA-1234-1", id)
	assert.False(t, s.StaticRoot.IsSet())
	assert.Equal(t, "/srv/static", s.StaticRoot.OrElse("/srv/static"))
	assert.False(t, s.DeployHost.IsSet())
}

func TestResolve_MissingSecretKey(t *testing.T) {
	for _, v := range []string{"<unset>", ""} {
		_, err := Resolve(validSet(map[string]string{KeySecretKey: v}))
		require.Error(t, err)

		var missing *MissingRequiredConfigError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, KeySecretKey, missing.Key)
		assert.Contains(t, err.Error(), "SECRET_KEY")
	}
}

func TestResolve_InvalidPort(t *testing.T) {
	_, err := Resolve(validSet(map[string]string{KeyPort: "http"}))

	var ipe *InvalidPortError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, KeyPort, ipe.Key)
	assert.Equal(t, "http", ipe.Value)
}

func TestResolve_InvalidMemcachedPort(t *testing.T) {
	_, err := Resolve(validSet(map[string]string{KeyMemcachedLocation: "cache:abc"}))

	var ipe *InvalidPortError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, KeyMemcachedLocation, ipe.Key)
}

func TestResolve_InvalidDatabaseURL(t *testing.T) {
	_, err := Resolve(validSet(map[string]string{KeyDatabaseURL: "mysql://u:hunter2@/n"}))

	var dbe *InvalidDatabaseURLError
	require.ErrorAs(t, err, &dbe)
	assert.NotContains(t, err.Error(), "hunter2")
}

func TestResolve_ReportsEveryProblem(t *testing.T) {
	_, err := Resolve(NewSet(map[string]string{KeyPort: "x"}))
	require.Error(t, err)

	var keys []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var missing *MissingRequiredConfigError
		var port *InvalidPortError
		switch {
		case errors.As(e, &missing):
			keys = append(keys, missing.Key)
		case errors.As(e, &port):
			keys = append(keys, port.Key)
		}
	}
	assert.ElementsMatch(t, []string{
		KeySettingsModule, KeyServerHost, KeySecretKey, KeyPort, KeyDatabaseURL,
	}, keys)
}

func TestSettings_Redact(t *testing.T) {
	s, err := Resolve(validSet(map[string]string{KeyMemcachedLocation: "m:1"}))
	require.NoError(t, err)

	r := s.Redact()
	assert.Equal(t, "********", r.SecretKey)
	assert.NotContains(t, r.Database, ":p@")
	assert.Equal(t, "mysql", r.DatabaseDriver)
	assert.Equal(t, "memcached", r.CacheBackend)
	mc, _ := r.Memcached.Get()
	assert.Equal(t, "m:1", mc)
}

func TestSettings_RestartRequired(t *testing.T) {
	a, err := Resolve(validSet(nil))
	require.NoError(t, err)
	b, err := Resolve(validSet(map[string]string{KeyPort: "9000", KeyDebug: "1"}))
	require.NoError(t, err)

	assert.Equal(t, []string{"SERVER_HOST/PORT"}, b.RestartRequired(a))
	assert.Empty(t, a.RestartRequired(a))
}
