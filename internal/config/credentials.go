package config

import (
	"strings"

	"ucmodeler/internal/errs"
)

const (
	EnvHost     = "DATABRICKS_HOST"
	EnvHTTPPath = "DATABRICKS_HTTP_PATH"
	EnvToken    = "DATABRICKS_TOKEN"
)

// Env is the connection triple as read from the environment.
type Env struct {
	Host     string
	HTTPPath string
	Token    string
}

// ConnectionForm is the connect form as submitted by the page.
type ConnectionForm struct {
	Host     string `json:"host" form:"host"`
	HTTPPath string `json:"http_path" form:"http_path"`
	Token    string `json:"token" form:"token"`
}

// ConnectionConfig identifies one SQL warehouse and the token used against it.
type ConnectionConfig struct {
	Host     string `json:"host"`
	HTTPPath string `json:"http_path"`
	Token    string `json:"token"`
}

// ResolveConnection merges the environment with the form. A non-blank form
// field overrides the environment value.
func ResolveConnection(env Env, form ConnectionForm) (ConnectionConfig, error) {
	cfg := ConnectionConfig{
		Host:     NormalizeHost(pick(form.Host, env.Host)),
		HTTPPath: pick(form.HTTPPath, env.HTTPPath),
		Token:    pick(form.Token, env.Token),
	}

	if err := cfg.Validate(); err != nil {
		return ConnectionConfig{}, err
	}

	return cfg, nil
}

// Validate reports every missing field by the environment variable that
// supplies it.
func (c ConnectionConfig) Validate() error {
	var missing []string

	if strings.TrimSpace(c.Host) == "" {
		missing = append(missing, EnvHost)
	}
	if strings.TrimSpace(c.HTTPPath) == "" {
		missing = append(missing, EnvHTTPPath)
	}
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, EnvToken)
	}

	if len(missing) > 0 {
		return errs.Missing("resolve connection", missing...)
	}

	return nil
}

// MaskedToken returns the token with all but the last four characters hidden.
func (c ConnectionConfig) MaskedToken() string {
	if len(c.Token) <= 4 {
		return strings.Repeat("*", len(c.Token))
	}

	return strings.Repeat("*", len(c.Token)-4) + c.Token[len(c.Token)-4:]
}

// NormalizeHost strips a URL scheme and trailing slashes from a workspace host.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")

	return strings.TrimRight(host, "/")
}

func pick(override, fallback string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}

	return strings.TrimSpace(fallback)
}
