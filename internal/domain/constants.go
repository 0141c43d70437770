package domain

import "time"

const (
	DefaultServerVersion              = "1.0.0"
	DefaultServerNameSuffix           = "MCP Server"
	DefaultConfigFile                 = "config/application.yaml"
	DefaultAppDir                     = "app"
	DefaultObservabilityListenAddress = "127.0.0.1:9464"
	DefaultEnableLog                  = true
	DefaultWatch                      = true
	DefaultReloadDebounce             = 200 * time.Millisecond
	DefaultResourceURIPrefix          = "plasma://resources/"
)

// DefaultResourceURI is the address of a resource declared without a URI.
func DefaultResourceURI(name string) string {
	return DefaultResourceURIPrefix + name
}
