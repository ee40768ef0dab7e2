package webmachinery

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "WEBUI"

// We use an exported interface to govern access to our config because the
// underlying struct has fields we don't want to expose.
type Config interface {
	Port() int
	TLSEnabled() bool
	TLSCertPath() string
	TLSKeyPath() string
	// ShutdownTimeout bounds how long in-flight requests may take to complete
	// once the server has been asked to stop.
	ShutdownTimeout() time.Duration
}

type config struct {
	PortAttr            int           `envconfig:"PORT"`
	TLSEnabledAttr      bool          `envconfig:"TLS_ENABLED"`
	TLSCertPathAttr     string        `envconfig:"TLS_CERT_PATH"`
	TLSKeyPathAttr      string        `envconfig:"TLS_KEY_PATH"`
	ShutdownTimeoutAttr time.Duration `envconfig:"SHUTDOWN_TIMEOUT"`
}

// NewConfigWithDefaults returns a Config object with default values already
// applied. Callers are then free to set custom values for the remaining fields
// and/or override default values.
func NewConfigWithDefaults() Config {
	return &config{
		PortAttr:            8080,
		ShutdownTimeoutAttr: 10 * time.Second,
	}
}

// GetConfigFromEnvironment returns configuration derived from environment
// variables
func GetConfigFromEnvironment() (Config, error) {
	c := NewConfigWithDefaults().(*config)
	if err := envconfig.Process(envconfigPrefix, c); err != nil {
		return c, errors.Wrap(
			err,
			"error getting web server configuration from environment",
		)
	}
	if c.TLSEnabledAttr {
		if c.TLSCertPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"WEBUI_TLS_CERT_PATH environment variable",
			)
		}
		if c.TLSKeyPathAttr == "" {
			return c, errors.New(
				"with TLS enabled, a value is required for the " +
					"WEBUI_TLS_KEY_PATH environment variable",
			)
		}
	}
	return c, nil
}

func (c *config) Port() int {
	return c.PortAttr
}

func (c *config) TLSEnabled() bool {
	return c.TLSEnabledAttr
}

func (c *config) TLSCertPath() string {
	return c.TLSCertPathAttr
}

func (c *config) TLSKeyPath() string {
	return c.TLSKeyPathAttr
}

func (c *config) ShutdownTimeout() time.Duration {
	return c.ShutdownTimeoutAttr
}
