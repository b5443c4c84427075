package server

// Config holds configuration for the HTTP serve mode.
type Config struct {
	// Port is where the server listens.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey protects the API. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
}
