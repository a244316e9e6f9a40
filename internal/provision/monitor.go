// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"context"
	"os/exec"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// EnsureRuntime checks that the Python interpreter exists and, if absent,
// attempts a system package install. Best effort: failures are logged and
// ignored, the monitor loop copes with a missing interpreter per run.
func EnsureRuntime(env Env) {
	if _, err := exec.LookPath(env.Python); err == nil {
		return
	}
	logEvent(env, "python runtime missing, installing", "python", env.Python)
	if err := runLogged(env, env.Apt, "install", "-y", "python3", "python3-pip"); err != nil {
		logWarn(env, "python runtime install failed", "error", err.Error())
	}
}

// EnsureMonitorDeps probes that the monitor's main library imports and, if
// not, pip-installs the fixed dependency set. Best effort.
func EnsureMonitorDeps(env Env) {
	if _, err := run(env.Python, "-c", "import selenium"); err == nil {
		return
	}
	logEvent(env, "monitor dependencies missing, installing", "deps", env.MonitorPipDeps)
	args := append([]string{"install"}, env.MonitorPipDeps...)
	if err := runLogged(env, env.Pip, args...); err != nil {
		logWarn(env, "monitor dependency install failed", "error", err.Error())
	}
}

// RunMonitorOnce invokes the external monitor script a single time, with
// its output forwarded line by line into the structured log.
func RunMonitorOnce(env Env) error {
	cmd := exec.Command(env.Python, env.MonitorScript)
	cmd.Stdout = newMonitorLogWriter(env, env.MonitorScript, "stdout")
	cmd.Stderr = newMonitorLogWriter(env, env.MonitorScript, "stderr")
	return cmd.Run()
}

// StartMonitorLoop detaches a goroutine that invokes the monitor script at
// the given interval. A non-zero exit is logged and never stops the loop;
// the loop runs until ctx is cancelled (the process lifetime in practice).
func StartMonitorLoop(ctx context.Context, env Env, interval time.Duration) {
	_, span := startSpan(
		env,
		"provision.StartMonitorLoop",
		attribute.String("script", env.MonitorScript),
		attribute.String("interval", interval.String()),
	)
	span.End()
	logEvent(env, "monitor loop started",
		"script", env.MonitorScript,
		"interval", interval.String(),
	)

	go func() {
		for {
			start := time.Now()
			if err := RunMonitorOnce(env); err != nil {
				logWarn(env, "monitor script failed",
					"script", env.MonitorScript,
					"duration", time.Since(start).String(),
					"error", err.Error(),
				)
			} else {
				logEvent(env, "monitor script finished",
					"script", env.MonitorScript,
					"duration", time.Since(start).String(),
				)
			}

			select {
			case <-ctx.Done():
				logEvent(env, "monitor loop stopped")
				return
			case <-time.After(interval):
			}
		}
	}()
}

// SetupMonitor runs the gated monitor setup: only when the enable flag was
// a case-insensitive "true" are the runtime and dependency checks performed
// and the loop detached. Returns whether the loop was started.
func SetupMonitor(ctx context.Context, env Env) bool {
	if !env.MonitorEnabled {
		logEvent(env, "monitor disabled, skipping setup")
		return false
	}
	EnsureRuntime(env)
	EnsureMonitorDeps(env)
	StartMonitorLoop(ctx, env, env.MonitorInterval)
	return true
}
