package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// AuthBackend selects the credential verifier: "static" accepts any
	// credentials, "sqlite" verifies against the user database.
	AuthBackend  string `mapstructure:"auth_backend" yaml:"auth_backend"`
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// SeedDemo creates a demo community at startup. Development only.
	SeedDemo bool `mapstructure:"seed_demo" yaml:"seed_demo"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		AuthBackend:       "static",
		DatabasePath:      "hivechat.db",
		JWTIssuer:         "hivechat",
		JWTAudience:       "hivechat-clients",
		JWTTTL:            24 * time.Hour,
	}
}
