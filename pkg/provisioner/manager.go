// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

// Package provisioner provides a Go library for provisioning a
// containerized Android emulator: waiting for its device bridge,
// installing the fixed application payloads, launching them, and
// supervising the periodic appointment monitor.
package provisioner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	core "github.com/llzmgjzhy/monitor-badminton/internal/provision"
)

var tracer = otel.Tracer("emuprov/provisioner")

// Manager provides high-level provisioning operations.
type Manager struct {
	env core.Env
}

// New creates a new Manager with auto-detected environment.
func New() *Manager {
	return &Manager{
		env: core.Detect(),
	}
}

// NewWithCorrelationID creates a new Manager with a correlation ID for structured logs.
func NewWithCorrelationID(correlationID string) *Manager {
	return NewWithContextAndCorrelationID(context.Background(), correlationID)
}

// NewWithContext creates a new Manager with a custom context for tracing.
func NewWithContext(ctx context.Context) *Manager {
	return NewWithContextAndCorrelationID(ctx, "")
}

// NewWithContextAndCorrelationID creates a new Manager with a custom context and correlation ID.
func NewWithContextAndCorrelationID(ctx context.Context, correlationID string) *Manager {
	env := core.Detect()
	if ctx == nil {
		ctx = context.Background()
	}
	env.Context = ctx
	if correlationID != "" {
		env.CorrelationID = correlationID
	}
	return &Manager{
		env: env,
	}
}

// NewWithEnv creates a new Manager with custom environment configuration.
func NewWithEnv(env Environment) *Manager {
	ctx := env.Context
	if ctx == nil {
		ctx = context.Background()
	}
	apps := make([]core.App, len(env.Apps))
	for i, app := range env.Apps {
		apps[i] = core.App{
			Package:   app.Package,
			APK:       app.APK,
			Component: app.Component,
		}
	}
	return &Manager{
		env: core.Env{
			ADB:             env.ADBBin,
			Python:          env.PythonBin,
			Pip:             env.PipBin,
			Apt:             env.AptBin,
			DeviceAddr:      env.DeviceAddr,
			Apps:            apps,
			CompatAPK:       env.CompatAPK,
			MonitorScript:   env.MonitorScript,
			MonitorEnabled:  env.MonitorEnabled,
			MonitorInterval: env.MonitorInterval,
			MonitorPipDeps:  env.MonitorPipDeps,
			ConnectTimeout:  env.ConnectTimeout,
			ConnectInterval: env.ConnectInterval,
			SettleDelay:     env.SettleDelay,
			EntrypointPID:   env.EntrypointPID,
			CorrelationID:   env.CorrelationID,
			Context:         ctx,
		},
	}
}

// Environment holds configuration for the provisioner tools and payloads.
type Environment struct {
	ADBBin          string          // Path to adb binary (default: "adb")
	PythonBin       string          // Path to python3 binary (default: "python3")
	PipBin          string          // Path to pip3 binary (default: "pip3")
	AptBin          string          // Path to apt-get binary (default: "apt-get")
	DeviceAddr      string          // Device bridge address (default: 127.0.0.1:5555)
	Apps            []App           // Application payloads
	CompatAPK       string          // Compatibility layer APK path
	MonitorScript   string          // Monitor script path
	MonitorEnabled  bool            // Whether the monitor loop is enabled
	MonitorInterval time.Duration   // Monitor invocation interval
	MonitorPipDeps  []string        // pip packages the monitor needs
	ConnectTimeout  time.Duration   // Bridge wait timeout
	ConnectInterval time.Duration   // Bridge poll interval
	SettleDelay     time.Duration   // Delay between bridge connect and installs
	EntrypointPID   int             // Entrypoint pid to await/kill
	CorrelationID   string          // Correlation ID for log enrichment
	Context         context.Context // Context for tracing
}

// App is one application payload: package id, APK path, launch component.
type App struct {
	Package   string
	APK       string
	Component string
}

// AppStatus describes one payload's install state.
type AppStatus struct {
	Package   string
	APK       string
	SizeBytes int64
	Installed bool
}

// Report is a snapshot of the provisioning state.
type Report struct {
	DeviceAddr      string
	BridgeReachable bool
	Apps            []AppStatus
	MonitorEnabled  bool
	MonitorInterval string
	EntrypointAlive bool
}

// WaitOptions contains options for waiting on the device bridge.
type WaitOptions struct {
	Timeout  time.Duration // Total wait budget (default: 10m)
	Interval time.Duration // Poll interval (default: 5s)
}

// InstallOptions contains options for a single install-if-needed call.
type InstallOptions struct {
	Package string // Package id (required)
	APKPath string // Local APK payload path (required)
}

// MonitorOptions contains options for the monitor loop.
type MonitorOptions struct {
	Interval time.Duration // Invocation interval (default: 5m)
}

// Provision runs the full boot sequence and blocks until the entrypoint
// process exits. A non-nil error means the bridge wait timed out and the
// entrypoint was terminated; callers should exit non-zero.
func (m *Manager) Provision() error {
	ctx, span := m.startSpan("provisioner.Provision")
	defer span.End()
	env := m.env
	env.Context = ctx
	return core.Provision(env)
}

// WaitForBridge polls the device bridge until it is reachable or the
// timeout budget is spent.
func (m *Manager) WaitForBridge(opts WaitOptions) error {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.Interval == 0 {
		opts.Interval = 5 * time.Second
	}
	core.EnsureServer(m.env)
	return core.WaitForBridge(m.env, opts.Timeout, opts.Interval)
}

// InstallIfNeeded installs an APK unless its package is already present.
func (m *Manager) InstallIfNeeded(opts InstallOptions) error {
	return core.InstallIfNeeded(m.env, opts.Package, opts.APKPath)
}

// Launch dispatches a launch intent; failures are logged, never returned.
func (m *Manager) Launch(component string) {
	core.LaunchApp(m.env, component)
}

// StartMonitor runs the runtime/dependency checks and detaches the
// monitor loop. Returns whether the loop was started (it is not when the
// enable flag is off).
func (m *Manager) StartMonitor(ctx context.Context, opts MonitorOptions) bool {
	env := m.env
	if opts.Interval != 0 {
		env.MonitorInterval = opts.Interval
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return core.SetupMonitor(ctx, env)
}

// Status takes a single snapshot of the provisioning state.
func (m *Manager) Status() Report {
	rep := core.Status(m.env)
	out := Report{
		DeviceAddr:      rep.DeviceAddr,
		BridgeReachable: rep.BridgeReachable,
		MonitorEnabled:  rep.MonitorEnabled,
		MonitorInterval: rep.MonitorInterval,
		EntrypointAlive: rep.EntrypointAlive,
	}
	for _, app := range rep.Apps {
		out.Apps = append(out.Apps, AppStatus{
			Package:   app.Package,
			APK:       app.APK,
			SizeBytes: app.SizeBytes,
			Installed: app.Installed,
		})
	}
	return out
}

// startSpan parents a span on the manager's context and tags it with the
// correlation ID, the same shape the core package uses.
func (m *Manager) startSpan(name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if m.env.CorrelationID != "" {
		attrs = append(attrs, attribute.String("correlation_id", m.env.CorrelationID))
	}
	ctx := m.env.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
