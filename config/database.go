package config

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DatabaseURL is the structured form of DATABASE_URL.
type DatabaseURL struct {
	Scheme   string
	User     string
	Password string
	Host     string
	Port     int // 0 when the url carries no port
	Name     string
	Options  url.Values
}

// Database backends selectable through the url scheme.
const (
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendLibSQL   = "libsql"
)

var schemeBackends = map[string]string{
	"mysql":      BackendMySQL,
	"postgres":   BackendPostgres,
	"postgresql": BackendPostgres,
	"pgsql":      BackendPostgres,
	"sqlite":     BackendSQLite,
	"sqlite3":    BackendSQLite,
	"libsql":     BackendLibSQL,
}

var defaultPorts = map[string]int{
	BackendMySQL:    3306,
	BackendPostgres: 5432,
}

// ParseDatabaseURL parses a database url such as mysql://u:p@h:3306/n.
func ParseDatabaseURL(raw string) (DatabaseURL, error) {
	invalid := func(reason string) (DatabaseURL, error) {
		return DatabaseURL{}, &InvalidDatabaseURLError{Value: redactURL(raw), Reason: reason}
	}

	u, err := url.Parse(raw)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return invalid(uerr.Err.Error())
		}
		return invalid(err.Error())
	}
	if u.Scheme == "" {
		return invalid("missing scheme")
	}
	scheme := strings.ToLower(u.Scheme)
	backend, ok := schemeBackends[scheme]
	if !ok {
		return invalid("unsupported scheme " + strconv.Quote(scheme))
	}

	d := DatabaseURL{
		Scheme:  scheme,
		Host:    u.Hostname(),
		Options: u.Query(),
	}
	if u.User != nil {
		d.User = u.User.Username()
		d.Password, _ = u.User.Password()
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return invalid("bad port " + strconv.Quote(p))
		}
		d.Port = port
	}

	switch backend {
	case BackendSQLite:
		// sqlite:///rel.db is relative, sqlite:////abs.db is absolute.
		d.Name = strings.TrimPrefix(u.Path, "/")
		if d.Name == "" {
			return invalid("missing database path")
		}
	case BackendLibSQL:
		if d.Host == "" {
			return invalid("missing host")
		}
		d.Name = strings.TrimPrefix(u.Path, "/")
	default:
		if d.Host == "" {
			return invalid("missing host")
		}
		d.Name = strings.TrimPrefix(u.Path, "/")
		if d.Name == "" {
			return invalid("missing database name")
		}
	}
	return d, nil
}

// Backend returns one of the Backend* constants.
func (d DatabaseURL) Backend() string {
	return schemeBackends[d.Scheme]
}

// Driver returns the database/sql driver name registered for the backend.
func (d DatabaseURL) Driver() string {
	switch d.Backend() {
	case BackendMySQL:
		return "mysql"
	case BackendPostgres:
		return "pgx"
	case BackendLibSQL:
		return "libsql"
	default:
		return "sqlite3"
	}
}

// Address returns host:port, filling in the backend's default port.
func (d DatabaseURL) Address() string {
	port := d.Port
	if port == 0 {
		port = defaultPorts[d.Backend()]
	}
	if port == 0 {
		return d.Host
	}
	return net.JoinHostPort(d.Host, strconv.Itoa(port))
}

// DSN returns the data source name understood by Driver().
func (d DatabaseURL) DSN() string {
	switch d.Backend() {
	case BackendMySQL:
		cfg := mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = d.Address()
		cfg.DBName = d.Name
		cfg.ParseTime = true
		for k, vs := range d.Options {
			if k == "parseTime" || len(vs) == 0 {
				continue
			}
			if cfg.Params == nil {
				cfg.Params = map[string]string{}
			}
			cfg.Params[k] = vs[len(vs)-1]
		}
		return cfg.FormatDSN()
	case BackendSQLite:
		if len(d.Options) == 0 {
			return d.Name
		}
		return d.Name + "?" + d.Options.Encode()
	default:
		scheme := d.Scheme
		if d.Backend() == BackendPostgres {
			scheme = "postgres"
		}
		u := url.URL{
			Scheme:   scheme,
			User:     d.userinfo(),
			Host:     d.Address(),
			RawQuery: d.Options.Encode(),
		}
		if d.Name != "" {
			u.Path = "/" + d.Name
		}
		return u.String()
	}
}

func (d DatabaseURL) userinfo() *url.Userinfo {
	switch {
	case d.User == "" && d.Password == "":
		return nil
	case d.Password == "":
		return url.User(d.User)
	default:
		return url.UserPassword(d.User, d.Password)
	}
}

// String returns the url with the password masked.
func (d DatabaseURL) String() string {
	if d.Backend() == BackendSQLite {
		return d.Scheme + ":///" + d.Name
	}
	u := url.URL{Scheme: d.Scheme, User: d.userinfo(), Host: d.Host}
	if d.Port != 0 {
		u.Host = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	}
	if d.Name != "" {
		u.Path = "/" + d.Name
	}
	return u.Redacted()
}

// The password runs to the last @ before the path.
var passwordInURL = regexp.MustCompile(`(//[^:/@]*:)[^/]*@`)

// redactURL masks the password of a url that may not parse.
func redactURL(raw string) string {
	return passwordInURL.ReplaceAllString(raw, "${1}xxxxx@")
}
