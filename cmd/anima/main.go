package main

// @title Anima API
// @version 1.0
// @description Personal conversational agent with provider fallback, persistent memory and an emotion engine
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/goclaw/anima

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/goclaw/anima/config"
	"github.com/goclaw/anima/pkg/agent"
	"github.com/goclaw/anima/pkg/api"
	"github.com/goclaw/anima/pkg/api/events"
	"github.com/goclaw/anima/pkg/api/handlers"
	"github.com/goclaw/anima/pkg/conversation"
	"github.com/goclaw/anima/pkg/emotion"
	"github.com/goclaw/anima/pkg/eventbus"
	grpcserver "github.com/goclaw/anima/pkg/grpc"
	"github.com/goclaw/anima/pkg/logger"
	"github.com/goclaw/anima/pkg/memory"
	"github.com/goclaw/anima/pkg/metrics"
	"github.com/goclaw/anima/pkg/personality"
	"github.com/goclaw/anima/pkg/provider"
	"github.com/goclaw/anima/pkg/telemetry/tracing"
	"github.com/goclaw/anima/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	agentName  = flag.String("name", "", "Override the agent name")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	// Print help
	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	// Print version
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	// Build CLI overrides map
	overrides := buildOverrides()

	// Load configuration
	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	// Initialize logger with configuration
	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting Anima",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"agent", cfg.Personality.Name,
		"environment", cfg.App.Environment,
	)

	log.Debug("Configuration loaded", "config", cfg.String())

	// Create root context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize tracing
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
		if err != nil {
			log.Error("Failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer flushCancel()
			if err := shutdownTracing(flushCtx); err != nil {
				log.Error("Error shutting down tracing", "error", err)
			}
		}()
		log.Info("Initialized tracing", "endpoint", cfg.Tracing.Endpoint, "sampler", cfg.Tracing.Sampler)
	}

	// Initialize metrics manager
	metricsCfg := metrics.Config{
		Enabled:                cfg.Metrics.Enabled,
		Port:                   cfg.Metrics.Port,
		Path:                   cfg.Metrics.Path,
		TurnDurationBuckets:    metrics.DefaultConfig().TurnDurationBuckets,
		ProviderLatencyBuckets: metrics.DefaultConfig().ProviderLatencyBuckets,
		RecallDurationBuckets:  metrics.DefaultConfig().RecallDurationBuckets,
		HTTPDurationBuckets:    metrics.DefaultConfig().HTTPDurationBuckets,
	}
	metricsManager := metrics.NewManager(metricsCfg)

	// Start metrics server if enabled
	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// Initialize the event bus and publisher
	bus := eventbus.NewLocalBus()
	publisher, err := eventbus.NewPublisher(uuid.NewString(), bus, eventbus.DefaultRetryConfig(), metricsManager)
	if err != nil {
		log.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	busEvents := agent.NewBusEvents(publisher, cfg.Memory.Backend, log)

	// Initialize memory backend
	var backend memory.DocumentStore
	switch cfg.Memory.Backend {
	case "badger":
		backend, err = memory.NewBadgerStore(cfg.Memory.Path)
		if err != nil {
			log.Error("Failed to open Badger memory backend", "error", err, "path", cfg.Memory.Path)
			os.Exit(1)
		}
		log.Info("Initialized Badger memory backend", "path", cfg.Memory.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Memory.Redis.Address,
			Password: cfg.Memory.Redis.Password,
			DB:       cfg.Memory.Redis.DB,
		})
		backend, err = memory.NewRedisStore(client)
		if err != nil {
			log.Error("Failed to connect Redis memory backend", "error", err, "address", cfg.Memory.Redis.Address)
			os.Exit(1)
		}
		log.Info("Initialized Redis memory backend", "address", cfg.Memory.Redis.Address)
	default:
		backend, err = memory.NewFileStore(cfg.Memory.Path)
		if err != nil {
			log.Error("Failed to open file memory backend", "error", err, "path", cfg.Memory.Path)
			os.Exit(1)
		}
		log.Info("Initialized file memory backend", "path", cfg.Memory.Path)
	}

	store, err := memory.NewStore(&cfg.Memory, backend,
		memory.WithLogger(log),
		memory.WithTelemetry(metricsManager),
		memory.WithEvictionHook(busEvents.MemoryEvicted),
		memory.WithPersistFailureHook(busEvents.MemoryPersistFailed),
	)
	if err != nil {
		log.Error("Failed to create memory store", "error", err)
		os.Exit(1)
	}
	if err := store.Start(ctx); err != nil {
		log.Error("Failed to start memory store", "error", err)
		os.Exit(1)
	}

	// Initialize the gRPC health server early so the provider router
	// can report aggregate availability into it.
	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPC.Enabled {
		grpcSrv, err = grpcserver.New(buildGRPCConfig(cfg))
		if err != nil {
			log.Error("Failed to create gRPC server", "error", err)
			os.Exit(1)
		}
	}

	// Initialize personality and emotions
	persona, err := personality.New(cfg.Personality.Name, personality.Mood(cfg.Personality.Mood))
	if err != nil {
		log.Error("Failed to create personality", "error", err, "mood", cfg.Personality.Mood)
		os.Exit(1)
	}
	emotions := emotion.NewEngine(emotion.WithTelemetry(metricsManager))

	// Initialize the provider router. The offline responder reads live
	// emotional state so canned replies stay in character.
	offline := provider.NewOfflineAdapter(cfg.Personality.Name, func() provider.OfflineContext {
		return provider.OfflineContext{
			Mood:       string(persona.Mood()),
			Excitement: emotions.Level(emotion.ChannelExcitement),
			Empathy:    emotions.Level(emotion.ChannelEmpathy),
		}
	})
	routerOpts := []provider.Option{
		provider.WithLogger(log),
		provider.WithTelemetry(metricsManager),
		provider.WithEvents(busEvents),
	}
	if grpcSrv != nil {
		routerOpts = append(routerOpts, provider.WithHealthSink(grpcSrv.Health()))
	}
	router, err := provider.NewRouter(&cfg.Providers, offline, routerOpts...)
	if err != nil {
		log.Error("Failed to create provider router", "error", err)
		os.Exit(1)
	}
	router.Initialize(ctx)

	// Assemble the agent pipeline
	window := conversation.NewWindow(cfg.Conversation.WindowSize)
	anima, err := agent.New(cfg, agent.Deps{
		Router:      router,
		Window:      window,
		Memory:      store,
		Emotions:    emotions,
		Personality: persona,
		Publisher:   publisher,
		Logger:      log,
		Telemetry:   metricsManager,
	})
	if err != nil {
		log.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	// Initialize HTTP server with handlers
	healthHandler := handlers.NewHealthHandler(anima, router, store)
	apiHandlers := &api.Handlers{
		Chat:         handlers.NewChatHandler(anima, log),
		Conversation: handlers.NewConversationHandler(anima, window, log),
		Providers:    handlers.NewProviderHandler(router, log),
		Memory:       handlers.NewMemoryHandler(store, log),
		Emotions:     handlers.NewEmotionHandler(emotions),
		Personality:  handlers.NewPersonalityHandler(persona, log),
		Reflections:  handlers.NewReflectionHandler(store),
		Health:       healthHandler,
		Tracing:      cfg.Tracing.Enabled,
	}
	if metricsManager.Enabled() {
		apiHandlers.Metrics = metricsManager
	}

	// Bridge bus events to websocket subscribers
	broadcaster := events.NewBroadcaster()
	bridge, err := events.NewBridge(bus, broadcaster, log)
	if err != nil {
		log.Error("Failed to create event bridge", "error", err)
		os.Exit(1)
	}
	go bridge.Run(ctx)

	if cfg.Server.WebSocket.Enabled {
		wsHandler := handlers.NewWebSocketHandler(anima, log, handlers.WebSocketConfig{
			AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
			MaxConnections: cfg.Server.WebSocket.MaxConnections,
		})
		apiHandlers.WebSocket = wsHandler
		go forwardEvents(ctx, broadcaster, wsHandler)
		defer wsHandler.Close()
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)

	// Start gRPC server if enabled
	if grpcSrv != nil {
		if err := grpcSrv.Start(); err != nil {
			log.Error("Failed to start gRPC server", "error", err)
			os.Exit(1)
		}
		go syncMemoryHealth(ctx, store, grpcSrv.Health())
		log.Info("Started gRPC server", "port", cfg.Server.GRPC.Port)
	}

	// Start HTTP server in a separate goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	healthHandler.SetReady(true)

	log.Info("Anima is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
		"memory_backend", cfg.Memory.Backend,
		"personality", cfg.Personality.Name,
	)
	log.Info("Press Ctrl+C to stop")

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first
	log.Info("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	if grpcSrv != nil {
		log.Info("Shutting down gRPC server")
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			log.Error("Error shutting down gRPC server", "error", err)
		}
	}

	bridge.Close()
	broadcaster.Close()
	if err := bus.Close(); err != nil {
		log.Error("Error closing event bus", "error", err)
	}

	// Flush memory last so turns that completed during shutdown persist.
	log.Info("Stopping memory store")
	if err := store.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping memory store", "error", err)
	}

	log.Info("Anima stopped gracefully")
}

// forwardEvents fans broadcaster events out to websocket clients until
// the context is cancelled.
func forwardEvents(ctx context.Context, broadcaster *events.Broadcaster, ws *handlers.WebSocketHandler) {
	ch := broadcaster.Subscribe(64)
	defer broadcaster.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			_ = ws.Broadcast(handlers.EventMessage{
				Type:      event.Type,
				SessionID: event.SessionID,
				Timestamp: event.Timestamp,
				Payload:   event.Payload,
			})
		}
	}
}

// syncMemoryHealth mirrors the store's degraded flag into the gRPC
// health service. The persist-failure hook has no recovery signal, so
// this polls.
func syncMemoryHealth(ctx context.Context, store *memory.Store, health *grpcserver.HealthServer) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			healthy := !store.Degraded()
			if healthy != serving {
				serving = healthy
				health.SetMemoryServing(healthy)
			}
		}
	}
}

func buildGRPCConfig(cfg *config.Config) *grpcserver.Config {
	g := grpcserver.DefaultConfig()
	g.Address = fmt.Sprintf(":%d", cfg.Server.GRPC.Port)
	g.EnableReflection = cfg.Server.GRPC.EnableReflection
	if cfg.Server.GRPC.MaxRecvMsgSize > 0 {
		g.MaxRecvMsgSize = cfg.Server.GRPC.MaxRecvMsgSize
	}
	if cfg.Server.GRPC.MaxSendMsgSize > 0 {
		g.MaxSendMsgSize = cfg.Server.GRPC.MaxSendMsgSize
	}
	if cfg.Server.GRPC.TLS.Enabled {
		g.TLS = &grpcserver.TLSConfig{
			Enabled:  true,
			CertFile: cfg.Server.GRPC.TLS.CertFile,
			KeyFile:  cfg.Server.GRPC.TLS.KeyFile,
		}
	}
	ka := cfg.Server.GRPC.Keepalive
	if ka.MaxIdleSeconds > 0 {
		g.Keepalive.MaxIdleSeconds = ka.MaxIdleSeconds
	}
	if ka.MaxAgeSeconds > 0 {
		g.Keepalive.MaxAgeSeconds = ka.MaxAgeSeconds
	}
	if ka.TimeSeconds > 0 {
		g.Keepalive.TimeSeconds = ka.TimeSeconds
	}
	if ka.TimeoutSeconds > 0 {
		g.Keepalive.TimeoutSeconds = ka.TimeoutSeconds
	}
	return g
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *agentName != "" {
		overrides["personality.name"] = *agentName
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("Anima - Personal Conversational Agent\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("Anima - Personal conversational agent with provider fallback, persistent memory and an emotion engine\n\n")
	fmt.Printf("Usage: anima [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  anima                                    # Run with default config\n")
	fmt.Printf("  anima -config config.yaml                # Use specific config file\n")
	fmt.Printf("  anima -port 9090 -log-level debug        # Override specific options\n")
	fmt.Printf("  anima -version                           # Print version info\n")
}
