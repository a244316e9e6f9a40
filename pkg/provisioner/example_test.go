// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provisioner_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/llzmgjzhy/monitor-badminton/pkg/provisioner"
)

func Example_fullSequence() {
	// Auto-detect configuration from the container environment
	// (ENTRYPOINT_PID, ENABLE_MONITOR, MONITOR_INTERVAL, ...).
	mgr := provisioner.New()

	// Wait → settle → install → launch → monitor → block on entrypoint pid.
	if err := mgr.Provision(); err != nil {
		// Bridge timeout; the entrypoint has been terminated already.
		log.Fatal(err)
	}
}

func Example_individualPhases() {
	mgr := provisioner.NewWithCorrelationID("run-7")

	// Wait for the device bridge with an explicit budget
	if err := mgr.WaitForBridge(provisioner.WaitOptions{
		Timeout:  10 * time.Minute,
		Interval: 5 * time.Second,
	}); err != nil {
		log.Fatal(err)
	}

	// Install a payload unless already present
	if err := mgr.InstallIfNeeded(provisioner.InstallOptions{
		Package: "com.tencent.mm",
		APKPath: "/opt/apks/wechat.apk",
	}); err != nil {
		log.Fatal(err)
	}

	// Launch (failures are logged, never returned)
	mgr.Launch("com.tencent.mm/.ui.LauncherUI")

	// Detach the monitor loop
	started := mgr.StartMonitor(context.Background(), provisioner.MonitorOptions{
		Interval: 5 * time.Minute,
	})
	fmt.Printf("monitor started: %v\n", started)
}

func Example_customEnvironment() {
	mgr := provisioner.NewWithEnv(provisioner.Environment{
		ADBBin:     "/usr/local/bin/adb",
		DeviceAddr: "127.0.0.1:5557",
		Apps: []provisioner.App{
			{
				Package:   "com.tju.sports",
				APK:       "/payloads/tju-sports.apk",
				Component: "com.tju.sports/.MainActivity",
			},
		},
		ConnectTimeout:  2 * time.Minute,
		ConnectInterval: 5 * time.Second,
	})

	rep := mgr.Status()
	fmt.Printf("bridge reachable: %v\n", rep.BridgeReachable)
}
