// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// App is one of the fixed application payloads the provisioner manages.
type App struct {
	Package   string // package id, e.g. com.tencent.mm
	APK       string // local APK payload path
	Component string // package/activity for intent dispatch
}

type Env struct {
	ADB    string // adb
	Python string // python3
	Pip    string // pip3
	Apt    string // apt-get

	DeviceAddr string // loopback address:port of the in-container emulator
	Apps       []App  // the two fixed (package, apk) pairs
	CompatAPK  string // ARM translation layer, installed best-effort on failure

	MonitorScript   string        // external monitor script path
	MonitorEnabled  bool          // ENABLE_MONITOR, case-insensitive "true"
	MonitorInterval time.Duration // MONITOR_INTERVAL seconds
	MonitorPipDeps  []string      // pip packages the monitor needs

	ConnectTimeout  time.Duration
	ConnectInterval time.Duration
	SettleDelay     time.Duration

	// EntrypointPID is the container entrypoint the provisioner's lifetime
	// is tied to: killed on fatal failure, awaited at the end of the run.
	EntrypointPID int

	// CorrelationID is used to tie logs to a specific container run.
	CorrelationID string
	// Context is used to parent OpenTelemetry spans.
	Context context.Context
}

func Detect() Env {
	cfg := loadConfig()

	correlationID := cfg.GetString("correlation_id")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	return Env{
		ADB:        cfg.GetString("adb_bin"),
		Python:     cfg.GetString("python_bin"),
		Pip:        cfg.GetString("pip_bin"),
		Apt:        cfg.GetString("apt_bin"),
		DeviceAddr: cfg.GetString("device_addr"),
		Apps: []App{
			{
				Package:   cfg.GetString("wechat_package"),
				APK:       cfg.GetString("wechat_apk"),
				Component: cfg.GetString("wechat_component"),
			},
			{
				Package:   cfg.GetString("sports_package"),
				APK:       cfg.GetString("sports_apk"),
				Component: cfg.GetString("sports_component"),
			},
		},
		CompatAPK:       cfg.GetString("compat_apk"),
		MonitorScript:   cfg.GetString("monitor_script"),
		MonitorEnabled:  monitorFlagSet(cfg.GetString("enable_monitor")),
		MonitorInterval: time.Duration(cfg.GetInt("monitor_interval")) * time.Second,
		MonitorPipDeps:  cfg.GetStringSlice("monitor_pip_deps"),
		ConnectTimeout:  time.Duration(cfg.GetInt("connect_timeout")) * time.Second,
		ConnectInterval: time.Duration(cfg.GetInt("connect_interval")) * time.Second,
		SettleDelay:     time.Duration(cfg.GetInt("settle_delay")) * time.Second,
		EntrypointPID:   cfg.GetInt("entrypoint_pid"),
		CorrelationID:   correlationID,
		Context:         context.Background(),
	}
}
