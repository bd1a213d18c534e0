// Package config provides configuration management for Anima.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for Anima.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP/gRPC server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Providers configures the generation backends and fallback order.
	Providers ProvidersConfig `mapstructure:"providers"`

	// Conversation configures the bounded conversation window.
	Conversation ConversationConfig `mapstructure:"conversation"`

	// Memory configures the persistent memory store.
	Memory MemoryConfig `mapstructure:"memory"`

	// Personality configures the agent's identity and initial mood.
	Personality PersonalityConfig `mapstructure:"personality"`

	// Reflection configures the self-reflection cadence.
	Reflection ReflectionConfig `mapstructure:"reflection"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"oneof=development staging production"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP/gRPC server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// GRPC is the gRPC server configuration.
	GRPC GRPCConfig `mapstructure:"grpc"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`

	// WebSocket is the WebSocket endpoint configuration.
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// GRPCConfig holds gRPC-specific settings.
type GRPCConfig struct {
	// Enabled enables the gRPC health server.
	Enabled bool `mapstructure:"enabled"`

	// Port is the gRPC server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// MaxRecvMsgSize is the maximum message size the server can receive (bytes).
	MaxRecvMsgSize int `mapstructure:"max_recv_msg_size" validate:"min=0"`

	// MaxSendMsgSize is the maximum message size the server can send (bytes).
	MaxSendMsgSize int `mapstructure:"max_send_msg_size" validate:"min=0"`

	// EnableReflection enables gRPC server reflection for debugging.
	EnableReflection bool `mapstructure:"enable_reflection"`

	// TLS is the TLS configuration.
	TLS GRPCTLSConfig `mapstructure:"tls"`

	// Keepalive is the keepalive configuration.
	Keepalive GRPCKeepaliveConfig `mapstructure:"keepalive"`
}

// GRPCTLSConfig holds gRPC TLS settings.
type GRPCTLSConfig struct {
	// Enabled indicates whether TLS is enabled.
	Enabled bool `mapstructure:"enabled"`

	// CertFile is the path to the server certificate file.
	CertFile string `mapstructure:"cert_file"`

	// KeyFile is the path to the server private key file.
	KeyFile string `mapstructure:"key_file"`
}

// GRPCKeepaliveConfig holds gRPC keepalive settings.
type GRPCKeepaliveConfig struct {
	// MaxIdleSeconds is the maximum idle time before closing a connection.
	MaxIdleSeconds int `mapstructure:"max_idle_seconds" validate:"min=0"`

	// MaxAgeSeconds is the maximum connection age.
	MaxAgeSeconds int `mapstructure:"max_age_seconds" validate:"min=0"`

	// TimeSeconds is the keepalive ping interval.
	TimeSeconds int `mapstructure:"time_seconds" validate:"min=0"`

	// TimeoutSeconds is the keepalive ping timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"min=0"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// WebSocketConfig holds WebSocket endpoint settings.
type WebSocketConfig struct {
	// Enabled enables the /ws endpoint.
	Enabled bool `mapstructure:"enabled"`

	// MaxConnections limits concurrent WebSocket clients.
	MaxConnections int `mapstructure:"max_connections" validate:"min=1"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// ProvidersConfig holds generation backend settings.
type ProvidersConfig struct {
	// Preferred is the fallback order of configured backends.
	// Valid entries: hosted, daemon, ondevice. The offline responder is
	// always registered last and needs no configuration.
	Preferred []string `mapstructure:"preferred"`

	// Timeout bounds a single generation call before failover kicks in.
	Timeout time.Duration `mapstructure:"timeout"`

	// HistoryLimit is the number of exchanges each adapter remembers.
	HistoryLimit int `mapstructure:"history_limit" validate:"min=1"`

	// Hosted configures the hosted API backend.
	Hosted HostedProviderConfig `mapstructure:"hosted"`

	// Daemon configures the local model daemon backend.
	Daemon DaemonProviderConfig `mapstructure:"daemon"`

	// OnDevice configures the on-device runner backend.
	OnDevice OnDeviceProviderConfig `mapstructure:"ondevice"`
}

// HostedProviderConfig holds hosted API backend settings.
type HostedProviderConfig struct {
	// APIKey is the API key. Empty disables the backend at initialization.
	APIKey string `mapstructure:"api_key"`

	// Model is the model identifier.
	Model string `mapstructure:"model"`

	// MaxTokens caps the generated response length.
	MaxTokens int `mapstructure:"max_tokens" validate:"min=1"`

	// Temperature is the sampling temperature.
	Temperature float64 `mapstructure:"temperature" validate:"min=0,max=1"`

	// RequestsPerSecond is the client-side rate limit.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"min=0"`

	// Burst is the rate limiter burst size.
	Burst int `mapstructure:"burst" validate:"min=0"`
}

// DaemonProviderConfig holds local daemon backend settings.
type DaemonProviderConfig struct {
	// BaseURL is the daemon HTTP endpoint.
	BaseURL string `mapstructure:"base_url"`

	// Model is the model name served by the daemon.
	Model string `mapstructure:"model"`

	// MaxTokens caps the generated response length.
	MaxTokens int `mapstructure:"max_tokens" validate:"min=1"`

	// Temperature is the sampling temperature.
	Temperature float64 `mapstructure:"temperature" validate:"min=0,max=1"`
}

// OnDeviceProviderConfig holds on-device runner settings. The runner endpoint
// is fixed; only the model selection and sampling knobs are configurable.
type OnDeviceProviderConfig struct {
	// ModelName is the bundled model to load.
	ModelName string `mapstructure:"model_name"`

	// MaxTokens caps the generated response length.
	MaxTokens int `mapstructure:"max_tokens" validate:"min=1"`

	// Temperature is the sampling temperature.
	Temperature float64 `mapstructure:"temperature" validate:"min=0,max=1"`
}

// ConversationConfig holds conversation window settings.
type ConversationConfig struct {
	// WindowSize is the maximum number of turns kept in the window.
	WindowSize int `mapstructure:"window_size" validate:"min=1"`
}

// MemoryConfig holds memory store settings.
type MemoryConfig struct {
	// Backend is the persistence backend (file, badger, redis).
	Backend string `mapstructure:"backend" validate:"oneof=file badger redis"`

	// Path is the document path (file backend) or database directory
	// (badger backend).
	Path string `mapstructure:"path"`

	// MaxEntries is the memory capacity before eviction.
	MaxEntries int `mapstructure:"max_entries" validate:"min=1"`

	// RecallLimit is the number of memories recalled per turn.
	RecallLimit int `mapstructure:"recall_limit" validate:"min=1"`

	// Redis configures the redis backend.
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	// Address is the Redis server address.
	Address string `mapstructure:"address"`

	// Password is the Redis password.
	Password string `mapstructure:"password"`

	// DB is the Redis database number.
	DB int `mapstructure:"db"`
}

// PersonalityConfig holds agent identity settings.
type PersonalityConfig struct {
	// Name is the agent's display name.
	Name string `mapstructure:"name" validate:"required"`

	// Mood is the initial mood overlay.
	Mood string `mapstructure:"mood" validate:"oneof=balanced curious empathetic creative playful reflective supportive"`
}

// ReflectionConfig holds self-reflection cadence settings.
type ReflectionConfig struct {
	// Enabled enables periodic self-reflection.
	Enabled bool `mapstructure:"enabled"`

	// EveryN triggers a reflection every N interactions.
	EveryN int `mapstructure:"every_n" validate:"min=1"`

	// MaxIdle triggers a reflection when this much time passed since the last.
	MaxIdle time.Duration `mapstructure:"max_idle"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the exporter kind. Only "otlpgrpc" is supported.
	Exporter string `mapstructure:"exporter"`

	// Endpoint is the collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint"`

	// Timeout bounds a single export batch.
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are extra headers sent to the collector.
	Headers map[string]string `mapstructure:"headers"`

	// Sampler selects the sampling strategy
	// (parentbased_traceidratio, always_on, always_off).
	Sampler string `mapstructure:"sampler"`

	// SampleRate is the fraction of traces to sample (0.0-1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	return ValidateWithDetails(c)
}

// String returns a string representation of the configuration (without sensitive data).
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: :%d, Env: %s, Memory: %s}",
		c.App.Name, c.Server.Port, c.App.Environment, c.Memory.Backend)
}
