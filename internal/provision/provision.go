// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Provision runs the whole boot sequence for the containerized emulator:
// locale, bridge wait, settle delay, idempotent installs, launches, the
// optional monitor loop, and finally blocks on the entrypoint pid.
//
// The returned error is non-nil only for the fatal path (bridge timeout);
// the entrypoint process has already been terminated by then and the
// caller is expected to exit non-zero.
func Provision(env Env) error {
	ctx, span := startSpan(env, "provision.Provision")
	defer span.End()
	env.Context = ctx

	setLocale(env)
	EnsureServer(env)

	if err := WaitForBridge(env, env.ConnectTimeout, env.ConnectInterval); err != nil {
		recordSpanError(span, err)
		TerminateEntrypoint(env)
		return err
	}

	logEvent(env, "settling before install", "delay", env.SettleDelay.String())
	time.Sleep(env.SettleDelay)

	for _, app := range env.Apps {
		if err := InstallIfNeeded(env, app.Package, app.APK); err != nil {
			// Recoverable: install already exhausted its compat retry.
			logWarn(env, "install gave up", "package", app.Package, "error", err.Error())
		}
	}

	for _, app := range env.Apps {
		LaunchApp(env, app.Component)
	}

	started := SetupMonitor(ctx, env)
	span.SetAttributes(attribute.Bool("monitor_started", started))

	AwaitProcess(ctx, env, env.EntrypointPID)
	return nil
}

// setLocale pins the container locale so the installed apps render CJK
// text correctly; child processes inherit it.
func setLocale(env Env) {
	_ = os.Setenv("LANG", "zh_CN.UTF-8")
	_ = os.Setenv("LC_ALL", "zh_CN.UTF-8")
	logEvent(env, "locale configured", "lang", "zh_CN.UTF-8")
}

// TerminateEntrypoint kills the tracked entrypoint process so the
// container exits with us. Interrupt first, hard kill if it lingers.
func TerminateEntrypoint(env Env) {
	if env.EntrypointPID <= 0 {
		return
	}
	proc, err := os.FindProcess(env.EntrypointPID)
	if err != nil {
		return
	}
	logWarn(env, "terminating entrypoint process", "pid", env.EntrypointPID)
	if err := proc.Signal(os.Interrupt); err != nil {
		return
	}
	time.Sleep(1 * time.Second)
	if processAlive(env.EntrypointPID) {
		_ = proc.Kill()
	}
}

// AwaitProcess blocks until the given pid exits, polling /proc once per
// second. The pid is not our child, so wait(2) is not an option. A pid of
// zero (no entrypoint tracked) blocks on the context instead.
func AwaitProcess(ctx context.Context, env Env, pid int) {
	if pid <= 0 {
		logEvent(env, "no entrypoint pid, blocking on context")
		<-ctx.Done()
		return
	}
	logEvent(env, "awaiting entrypoint process", "pid", pid)
	for processAlive(pid) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}
	}
	logEvent(env, "entrypoint process exited", "pid", pid)
}

// processAlive reports whether a pid exists. Linux-only, via /proc, the
// same probe used for the entrypoint liveness check.
func processAlive(pid int) bool {
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	return err == nil
}
