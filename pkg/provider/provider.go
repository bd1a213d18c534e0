// Package provider implements the generation backends and the fallback
// router that keeps the agent answering when backends degrade. The
// variant set is closed: hosted API, local daemon, on-device runner,
// and a deterministic offline responder that can never fail.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goclaw/anima/config"
)

// Known backend names. The offline responder is always registered and
// is never listed in the preferred order.
const (
	NameHosted   = "hosted"
	NameDaemon   = "daemon"
	NameOnDevice = "ondevice"
	NameOffline  = "offline"
)

// Request is a single generation call.
type Request struct {
	// System carries persona, emotional guidance, and recalled memories.
	System string

	// Prompt is the user's message.
	Prompt string
}

// Result is a completed generation.
type Result struct {
	Text     string
	Provider string
	Model    string
	Latency  time.Duration
}

// Adapter is one generation backend. Implementations are safe for
// concurrent use.
type Adapter interface {
	// Name returns the backend name.
	Name() string

	// Initialize prepares the adapter. A failure marks the adapter
	// unavailable but never aborts the router.
	Initialize(ctx context.Context) error

	// Generate produces a response for the request.
	Generate(ctx context.Context, req Request) (*Result, error)

	// HealthCheck probes the backend.
	HealthCheck(ctx context.Context) error

	// Available reports whether the adapter believes it can serve.
	Available() bool
}

// historyKeeper is implemented by adapters that track recent exchanges.
// The router records an exchange only after a generation served a real
// conversation turn, so probe sweeps never pollute the history.
type historyKeeper interface {
	RecordExchange(user, assistant string)
	ClearHistory()
}

// modelReporter is implemented by adapters that know their model name.
type modelReporter interface {
	Model() string
}

// newBackendAdapter constructs the adapter for one preferred backend
// kind. The set is closed: adding a backend means adding a case here.
func newBackendAdapter(kind string, cfg *config.ProvidersConfig) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case NameHosted:
		return NewHostedAdapter(cfg.Hosted, cfg.HistoryLimit), nil
	case NameDaemon:
		return NewDaemonAdapter(cfg.Daemon, cfg.HistoryLimit), nil
	case NameOnDevice:
		return NewOnDeviceAdapter(cfg.OnDevice, cfg.HistoryLimit), nil
	default:
		return nil, fmt.Errorf("provider: unknown backend kind %q", kind)
	}
}
