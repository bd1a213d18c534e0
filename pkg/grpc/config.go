package grpc

import "fmt"

// Config holds the health/admin gRPC server configuration.
type Config struct {
	// Address is the listen address (e.g. ":9090").
	Address string

	// TLS holds the optional TLS/mTLS configuration.
	TLS *TLSConfig

	// MaxConnections caps concurrent streams.
	MaxConnections int

	// Keepalive holds the connection keepalive policy.
	Keepalive *KeepaliveConfig

	// MaxRecvMsgSize is the largest message the server accepts (bytes).
	MaxRecvMsgSize int

	// MaxSendMsgSize is the largest message the server sends (bytes).
	MaxSendMsgSize int

	// EnableReflection turns on server reflection for grpcurl and the like.
	EnableReflection bool

	// EnableHealthCheck registers the standard health service.
	EnableHealthCheck bool
}

// TLSConfig holds TLS/mTLS settings.
type TLSConfig struct {
	// Enabled turns TLS on.
	Enabled bool

	// CertFile is the server certificate path.
	CertFile string

	// KeyFile is the server private key path.
	KeyFile string

	// CAFile is the CA certificate path, required for mTLS.
	CAFile string

	// ClientAuth requires client certificates (mTLS).
	ClientAuth bool
}

// KeepaliveConfig holds connection keepalive settings, all in seconds.
type KeepaliveConfig struct {
	// MaxIdleSeconds closes connections idle this long.
	MaxIdleSeconds int

	// MaxAgeSeconds is the maximum connection age.
	MaxAgeSeconds int

	// MaxAgeGraceSeconds is the drain window after max age.
	MaxAgeGraceSeconds int

	// TimeSeconds is the server ping interval.
	TimeSeconds int

	// TimeoutSeconds is how long to wait for a ping ack.
	TimeoutSeconds int

	// MinTimeSeconds is the minimum interval between client pings.
	MinTimeSeconds int

	// PermitWithoutStream allows client pings with no active streams.
	PermitWithoutStream bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":9090",
		MaxConnections:    1000,
		MaxRecvMsgSize:    4 * 1024 * 1024,
		MaxSendMsgSize:    4 * 1024 * 1024,
		EnableReflection:  false,
		EnableHealthCheck: true,
		Keepalive: &KeepaliveConfig{
			MaxIdleSeconds:     300,
			MaxAgeSeconds:      3600,
			MaxAgeGraceSeconds: 60,
			TimeSeconds:        60,
			TimeoutSeconds:     20,
			MinTimeSeconds:     30,
		},
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("max connections cannot be negative")
	}
	if c.MaxRecvMsgSize < 0 {
		return fmt.Errorf("max recv message size cannot be negative")
	}
	if c.MaxSendMsgSize < 0 {
		return fmt.Errorf("max send message size cannot be negative")
	}

	if c.TLS != nil && c.TLS.Enabled {
		if err := c.TLS.Validate(); err != nil {
			return fmt.Errorf("invalid TLS config: %w", err)
		}
	}
	if c.Keepalive != nil {
		if err := c.Keepalive.Validate(); err != nil {
			return fmt.Errorf("invalid keepalive config: %w", err)
		}
	}
	return nil
}

// Validate checks the TLS settings. A disabled config is always valid.
func (t *TLSConfig) Validate() error {
	if !t.Enabled {
		return nil
	}
	if t.CertFile == "" {
		return fmt.Errorf("cert file is required when TLS is enabled")
	}
	if t.KeyFile == "" {
		return fmt.Errorf("key file is required when TLS is enabled")
	}
	if t.ClientAuth && t.CAFile == "" {
		return fmt.Errorf("CA file is required when client auth is enabled")
	}
	return nil
}

// Validate checks the keepalive policy.
func (k *KeepaliveConfig) Validate() error {
	if k.MaxIdleSeconds < 0 {
		return fmt.Errorf("max idle seconds cannot be negative")
	}
	if k.MaxAgeSeconds < 0 {
		return fmt.Errorf("max age seconds cannot be negative")
	}
	if k.MaxAgeGraceSeconds < 0 {
		return fmt.Errorf("max age grace seconds cannot be negative")
	}
	if k.TimeSeconds < 0 {
		return fmt.Errorf("time seconds cannot be negative")
	}
	if k.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout seconds cannot be negative")
	}
	if k.MinTimeSeconds < 0 {
		return fmt.Errorf("min time seconds cannot be negative")
	}
	if k.TimeoutSeconds > 0 && k.TimeSeconds > 0 && k.TimeoutSeconds >= k.TimeSeconds {
		return fmt.Errorf("timeout must be less than ping interval")
	}
	return nil
}
