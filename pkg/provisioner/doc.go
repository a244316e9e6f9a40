// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

/*
Package provisioner provides a Go library for provisioning a containerized
Android emulator instance and supervising the appointment monitor that runs
against it.

# Overview

The library drives the boot sequence of a single emulator container: it
waits for the device bridge (adb over loopback TCP) to come up, installs
the two fixed application payloads if they are not already present, launches
them, and optionally supervises a periodic external monitor script. The
process then ties its lifetime to the container entrypoint pid.

# Quick Start

	import "github.com/llzmgjzhy/monitor-badminton/pkg/provisioner"

	func main() {
		mgr := provisioner.New()

		// Full sequence: wait → settle → install → launch → monitor → block.
		if err := mgr.Provision(); err != nil {
			// Bridge never came up; the entrypoint was already terminated.
			os.Exit(1)
		}
	}

# Individual Phases

Each phase is also available on its own:

	mgr.WaitForBridge(provisioner.WaitOptions{Timeout: 10 * time.Minute})
	mgr.InstallIfNeeded(provisioner.InstallOptions{
		Package: "com.tencent.mm",
		APKPath: "/opt/apks/wechat.apk",
	})
	mgr.Launch("com.tencent.mm/.ui.LauncherUI")
	mgr.StartMonitor(ctx, provisioner.MonitorOptions{Interval: 5 * time.Minute})

# Error Policy

Only the bridge wait is fatal: on timeout the tracked entrypoint process is
killed and an error is returned. Everything else is best effort — a failed
install falls back to the compatibility layer and one retry, a refused
launch intent logs a warning, and a failing monitor script never stops the
monitor loop.

# Environment Configuration

By default the manager auto-detects its configuration from the environment:
ENTRYPOINT_PID, ENABLE_MONITOR, MONITOR_INTERVAL, DEVICE_ADDR, and the
payload path variables. Use NewWithEnv() to override programmatically.

# Thread Safety

Manager instances are not thread-safe. Create separate instances for
concurrent use, or synchronize access with a mutex.

# License

AGPL-3.0-only

Copyright (C) 2026 llzmgjzhy
*/
package provisioner
