package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Credentials holds the database connection parameters read from the
// local credentials file.
type Credentials struct {
	Username string
	Password string
	Host     string
	Port     string
	Database string
}

// LoadCredentials reads the fixed five-line positional credentials file:
// username, password, host, port, database name.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials file: %w", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) < 5 {
		return Credentials{}, fmt.Errorf("credentials file %s: expected 5 lines, got %d", path, len(lines))
	}
	creds := Credentials{
		Username: strings.TrimSpace(lines[0]),
		Password: strings.TrimSpace(lines[1]),
		Host:     strings.TrimSpace(lines[2]),
		Port:     strings.TrimSpace(lines[3]),
		Database: strings.TrimSpace(lines[4]),
	}
	for name, value := range map[string]string{
		"username": creds.Username,
		"host":     creds.Host,
		"port":     creds.Port,
		"database": creds.Database,
	} {
		if value == "" {
			return Credentials{}, fmt.Errorf("credentials file %s: %s is empty", path, name)
		}
	}
	return creds, nil
}

// DSN renders the credentials as a postgres connection URL.
func (c Credentials) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Database,
	}
	return u.String()
}
