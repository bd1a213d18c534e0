package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "anima",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			GRPC: GRPCConfig{
				Enabled:          false,
				Port:             9090,
				MaxRecvMsgSize:   4 * 1024 * 1024, // 4MB
				MaxSendMsgSize:   4 * 1024 * 1024, // 4MB
				EnableReflection: false,
				Keepalive: GRPCKeepaliveConfig{
					MaxIdleSeconds: 300,
					MaxAgeSeconds:  3600,
					TimeSeconds:    60,
					TimeoutSeconds: 20,
				},
			},
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    60 * time.Second,
				IdleTimeout:     120 * time.Second,
				ShutdownTimeout: 10 * time.Second,
				RequestTimeout:  60 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
			},
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
				MaxAge:         300,
			},
			WebSocket: WebSocketConfig{
				Enabled:        true,
				MaxConnections: 100,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Providers: ProvidersConfig{
			Preferred:    []string{"hosted", "daemon", "ondevice"},
			Timeout:      30 * time.Second,
			HistoryLimit: 10,
			Hosted: HostedProviderConfig{
				APIKey:            "",
				Model:             "claude-3-5-haiku-latest",
				MaxTokens:         300,
				Temperature:       0.8,
				RequestsPerSecond: 2,
				Burst:             4,
			},
			Daemon: DaemonProviderConfig{
				BaseURL:     "http://127.0.0.1:11434",
				Model:       "llama3.2",
				MaxTokens:   300,
				Temperature: 0.8,
			},
			OnDevice: OnDeviceProviderConfig{
				ModelName:   "tinyllama-1.1b-chat-q4",
				MaxTokens:   256,
				Temperature: 0.7,
			},
		},
		Conversation: ConversationConfig{
			WindowSize: 50,
		},
		Memory: MemoryConfig{
			Backend:     "file",
			Path:        "data/memory_store.json",
			MaxEntries:  1000,
			RecallLimit: 5,
			Redis: RedisConfig{
				Address:  "localhost:6379",
				Password: "",
				DB:       0,
			},
		},
		Personality: PersonalityConfig{
			Name: "Anima",
			Mood: "balanced",
		},
		Reflection: ReflectionConfig{
			Enabled: true,
			EveryN:  10,
			MaxIdle: 2 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlpgrpc",
			Endpoint:   "localhost:4317",
			Timeout:    10 * time.Second,
			Sampler:    "parentbased_traceidratio",
			SampleRate: 0.1,
		},
	}
}
