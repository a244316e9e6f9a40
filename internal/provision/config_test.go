// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"testing"
	"time"
)

func TestDetectDefaults(t *testing.T) {
	env := Detect()

	if env.DeviceAddr != "127.0.0.1:5555" {
		t.Fatalf("expected default device addr, got %s", env.DeviceAddr)
	}
	if env.ConnectTimeout != 600*time.Second {
		t.Fatalf("expected 600s connect timeout, got %s", env.ConnectTimeout)
	}
	if env.ConnectInterval != 5*time.Second {
		t.Fatalf("expected 5s connect interval, got %s", env.ConnectInterval)
	}
	if env.SettleDelay != 10*time.Second {
		t.Fatalf("expected 10s settle delay, got %s", env.SettleDelay)
	}
	if env.MonitorEnabled {
		t.Fatal("monitor must be disabled by default")
	}
	if env.MonitorInterval != 300*time.Second {
		t.Fatalf("expected 300s monitor interval, got %s", env.MonitorInterval)
	}
	if len(env.Apps) != 2 {
		t.Fatalf("expected the two fixed payloads, got %d", len(env.Apps))
	}
	if env.Apps[0].Package != "com.tencent.mm" {
		t.Fatalf("unexpected first payload: %s", env.Apps[0].Package)
	}
	if env.CorrelationID == "" {
		t.Fatal("expected a generated correlation id")
	}
}

func TestDetectEnvOverrides(t *testing.T) {
	t.Setenv("ENABLE_MONITOR", "True")
	t.Setenv("MONITOR_INTERVAL", "60")
	t.Setenv("ENTRYPOINT_PID", "1234")
	t.Setenv("DEVICE_ADDR", "127.0.0.1:5557")
	t.Setenv("CORRELATION_ID", "run-42")

	env := Detect()

	if !env.MonitorEnabled {
		t.Fatal("expected ENABLE_MONITOR=True to enable the monitor")
	}
	if env.MonitorInterval != 60*time.Second {
		t.Fatalf("expected 60s monitor interval, got %s", env.MonitorInterval)
	}
	if env.EntrypointPID != 1234 {
		t.Fatalf("expected entrypoint pid 1234, got %d", env.EntrypointPID)
	}
	if env.DeviceAddr != "127.0.0.1:5557" {
		t.Fatalf("expected overridden device addr, got %s", env.DeviceAddr)
	}
	if env.CorrelationID != "run-42" {
		t.Fatalf("expected correlation id from env, got %s", env.CorrelationID)
	}
}

func TestDetectMonitorFlagVariants(t *testing.T) {
	for _, v := range []string{"false", "0", "yes", "enabled"} {
		t.Setenv("ENABLE_MONITOR", v)
		if Detect().MonitorEnabled {
			t.Fatalf("expected ENABLE_MONITOR=%q to leave the monitor disabled", v)
		}
	}
	t.Setenv("ENABLE_MONITOR", "TRUE")
	if !Detect().MonitorEnabled {
		t.Fatal("expected ENABLE_MONITOR=TRUE to enable the monitor")
	}
}
