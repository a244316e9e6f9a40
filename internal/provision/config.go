// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"strings"

	"github.com/spf13/viper"
)

// Defaults reproduce the container image layout this tool ships in. Every
// key is overridable through the environment (ENABLE_MONITOR,
// MONITOR_INTERVAL, ENTRYPOINT_PID, ...).
func loadConfig() *viper.Viper {
	cfg := viper.New()

	cfg.SetDefault("adb_bin", "adb")
	cfg.SetDefault("python_bin", "python3")
	cfg.SetDefault("pip_bin", "pip3")
	cfg.SetDefault("apt_bin", "apt-get")

	cfg.SetDefault("device_addr", "127.0.0.1:5555")
	cfg.SetDefault("connect_timeout", 600)
	cfg.SetDefault("connect_interval", 5)
	cfg.SetDefault("settle_delay", 10)

	cfg.SetDefault("wechat_package", "com.tencent.mm")
	cfg.SetDefault("wechat_apk", "/opt/apks/wechat.apk")
	cfg.SetDefault("wechat_component", "com.tencent.mm/.ui.LauncherUI")
	cfg.SetDefault("sports_package", "com.tju.sports")
	cfg.SetDefault("sports_apk", "/opt/apks/tju-sports.apk")
	cfg.SetDefault("sports_component", "com.tju.sports/.MainActivity")
	cfg.SetDefault("compat_apk", "/opt/apks/libhoudini.apk")

	cfg.SetDefault("enable_monitor", "")
	cfg.SetDefault("monitor_interval", 300)
	cfg.SetDefault("monitor_script", "/opt/scripts/monitor_appointment.py")
	cfg.SetDefault("monitor_pip_deps", []string{
		"selenium", "requests", "pyyaml", "pytz", "python-dotenv",
	})

	cfg.SetDefault("entrypoint_pid", 0)
	cfg.SetDefault("correlation_id", "")

	cfg.AutomaticEnv()
	return cfg
}

// monitorFlagSet implements the ENABLE_MONITOR contract: only a
// case-insensitive "true" enables the monitor, anything else does not.
func monitorFlagSet(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}
