// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"os"
	"strings"
)

type AppStatus struct {
	Package   string `json:"package"`
	APK       string `json:"apk"`
	SizeBytes int64  `json:"size_bytes"`
	Installed bool   `json:"installed"`
}

type Report struct {
	DeviceAddr      string      `json:"device_addr"`
	BridgeReachable bool        `json:"bridge_reachable"`
	Apps            []AppStatus `json:"apps"`
	MonitorEnabled  bool        `json:"monitor_enabled"`
	MonitorInterval string      `json:"monitor_interval"`
	MonitorScript   string      `json:"monitor_script"`
	EntrypointPID   int         `json:"entrypoint_pid"`
	EntrypointAlive bool        `json:"entrypoint_alive"`
}

// Status takes a single snapshot of the provisioning state: one bridge
// connect attempt, one package listing, payload stats. It never retries.
func Status(env Env) Report {
	_, span := startSpan(env, "provision.Status")
	defer span.End()

	rep := Report{
		DeviceAddr:      env.DeviceAddr,
		MonitorEnabled:  env.MonitorEnabled,
		MonitorInterval: env.MonitorInterval.String(),
		MonitorScript:   env.MonitorScript,
		EntrypointPID:   env.EntrypointPID,
		EntrypointAlive: env.EntrypointPID > 0 && processAlive(env.EntrypointPID),
	}

	out, _ := run(env.ADB, "connect", env.DeviceAddr)
	rep.BridgeReachable = strings.Contains(out, bridgeSuccessMarker)

	for _, app := range env.Apps {
		st := AppStatus{Package: app.Package, APK: app.APK}
		if fi, err := os.Stat(app.APK); err == nil {
			st.SizeBytes = fi.Size()
		}
		if rep.BridgeReachable {
			st.Installed, _ = PackageInstalled(env, app.Package)
		}
		rep.Apps = append(rep.Apps, st)
	}
	return rep
}
