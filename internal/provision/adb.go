// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/containerd/errdefs"
	"go.opentelemetry.io/otel/attribute"
)

// bridgeSuccessMarker is what `adb connect` prints on success ("connected
// to host:port" or "already connected to host:port"). Failure output says
// "cannot connect" / "failed to connect" and never matches.
const bridgeSuccessMarker = "connected"

func run(bin string, args ...string) (string, error) {
	cmd := exec.Command(bin, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.String(), fmt.Errorf("%s %v failed: %v\n%s", bin, args, err, buf.String())
	}
	return buf.String(), nil
}

// runLogged streams command output into the structured log instead of
// capturing it; used for the long-running package manager invocations.
func runLogged(env Env, bin string, args ...string) error {
	cmd := exec.Command(bin, args...)
	cmd.Stdout = newLineLogWriterWithMessage(env, "command output", "command", bin)
	cmd.Stderr = newCommandLogWriter(env, bin, args)
	return cmd.Run()
}

// EnsureServer starts the adb server (idempotent).
func EnsureServer(env Env) { _ = exec.Command(env.ADB, "start-server").Run() }

// WaitForBridge polls `adb connect` against the fixed loopback address at a
// constant interval until the success marker appears or the attempt budget
// (timeout/interval) is spent. No backoff, no jitter.
func WaitForBridge(env Env, timeout, interval time.Duration) error {
	_, span := startSpan(
		env,
		"provision.WaitForBridge",
		attribute.String("device_addr", env.DeviceAddr),
		attribute.String("timeout", timeout.String()),
		attribute.String("interval", interval.String()),
	)
	defer span.End()

	attempts := uint(1)
	if interval > 0 && timeout >= interval {
		attempts = uint(timeout / interval)
	}
	logEvent(env, "waiting for device bridge",
		"device_addr", env.DeviceAddr,
		"timeout", timeout.String(),
		"interval", interval.String(),
		"max_attempts", attempts,
	)

	attempt := 0
	connect := func() (string, error) {
		attempt++
		out, err := run(env.ADB, "connect", env.DeviceAddr)
		if strings.Contains(out, bridgeSuccessMarker) {
			return out, nil
		}
		if err == nil {
			err = fmt.Errorf("adb connect %s: no %q in output: %s",
				env.DeviceAddr, bridgeSuccessMarker, strings.TrimSpace(out))
		}
		logEvent(env, "device bridge not ready",
			"device_addr", env.DeviceAddr,
			"attempt", attempt,
			"error", err.Error(),
		)
		return "", err
	}

	out, err := backoff.Retry(
		spanContext(env),
		connect,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxTries(attempts),
	)
	if err != nil {
		err = fmt.Errorf("device bridge %s unreachable after %d attempts: %w (%w)",
			env.DeviceAddr, attempt, err, errdefs.ErrUnavailable)
		recordSpanError(span, err)
		return err
	}

	span.SetAttributes(attribute.Int("attempts", attempt))
	logEvent(env, "device bridge connected",
		"device_addr", env.DeviceAddr,
		"attempt", attempt,
		"output", strings.TrimSpace(out),
	)
	return nil
}

// PackageInstalled checks `pm list packages` output for an exact package id.
func PackageInstalled(env Env, pkg string) (bool, error) {
	out, err := run(env.ADB, "-s", env.DeviceAddr, "shell", "pm", "list", "packages")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "package:"+pkg {
			return true, nil
		}
	}
	return false, nil
}

// installAPK installs an APK allowing overwrite (-r) and downgrade (-d).
func installAPK(env Env, path string) error {
	_, err := run(env.ADB, "-s", env.DeviceAddr, "install", "-r", "-d", path)
	return err
}

// LaunchApp dispatches a launch intent for package/activity. Failure is
// non-fatal: the install step already guaranteed presence, so a refused
// intent is logged as a warning and swallowed.
func LaunchApp(env Env, component string) {
	_, span := startSpan(
		env,
		"provision.LaunchApp",
		attribute.String("component", component),
	)
	defer span.End()

	out, err := run(env.ADB, "-s", env.DeviceAddr, "shell", "am", "start", "-n", component)
	if err != nil {
		recordSpanError(span, err)
		logWarn(env, "app launch failed",
			"component", component,
			"device_addr", env.DeviceAddr,
			"error", err.Error(),
		)
		return
	}
	logEvent(env, "app launched",
		"component", component,
		"output", strings.TrimSpace(out),
	)
}
