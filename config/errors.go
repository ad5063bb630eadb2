package config

import "fmt"

// MalformedLineError reports an active line of an env file that is not a
// KEY=VALUE declaration.
type MalformedLineError struct {
	Path string
	Line int
	Text string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s:%d: malformed line %q: expected KEY=VALUE", e.Path, e.Line, e.Text)
}

// MissingRequiredConfigError reports a required key that is absent or empty.
type MissingRequiredConfigError struct {
	Key string
}

func (e *MissingRequiredConfigError) Error() string {
	return fmt.Sprintf("%s is required", e.Key)
}

// InvalidDatabaseURLError reports a DATABASE_URL that cannot be turned into a
// connection descriptor. Value is already redacted.
type InvalidDatabaseURLError struct {
	Value  string
	Reason string
}

func (e *InvalidDatabaseURLError) Error() string {
	return fmt.Sprintf("%s: invalid database url %q: %s", KeyDatabaseURL, e.Value, e.Reason)
}

// InvalidPortError reports a non-numeric or out-of-range port.
type InvalidPortError struct {
	Key   string
	Value string
}

func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("%s: invalid port %q", e.Key, e.Value)
}

// InvalidAddressError reports a host[:port] value that cannot be split into a
// host and a port.
type InvalidAddressError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("%s: invalid address %q: %s", e.Key, e.Value, e.Reason)
}
