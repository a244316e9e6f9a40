// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"testing"
	"time"
)

func TestStatusReportsPayloadState(t *testing.T) {
	dir := t.TempDir()

	env := newTestEnv(t)
	env.MonitorEnabled = true
	env.MonitorInterval = 300 * time.Second
	env.MonitorScript = "/opt/scripts/monitor_appointment.py"
	env.Apps = []App{
		{Package: "com.tencent.mm", APK: writeAPK(t, dir, "wechat.apk")},
		{Package: "com.tju.sports", APK: dir + "/missing.apk"},
	}
	env.ADB = writeStub(t, dir, "adb",
		"case \"$*\" in\n"+
			"  *\"pm list packages\"*)\n"+
			"    echo \"package:com.tencent.mm\"\n"+
			"    ;;\n"+
			"  *connect*)\n"+
			"    echo \"connected to 127.0.0.1:5555\"\n"+
			"    ;;\n"+
			"esac\n"+
			"exit 0\n")

	rep := Status(env)

	if !rep.BridgeReachable {
		t.Fatal("expected bridge to be reported reachable")
	}
	if len(rep.Apps) != 2 {
		t.Fatalf("expected 2 payload entries, got %d", len(rep.Apps))
	}
	if !rep.Apps[0].Installed {
		t.Fatal("expected com.tencent.mm to be reported installed")
	}
	if rep.Apps[0].SizeBytes == 0 {
		t.Fatal("expected payload size for an existing APK")
	}
	if rep.Apps[1].Installed {
		t.Fatal("expected com.tju.sports to be reported not installed")
	}
	if rep.Apps[1].SizeBytes != 0 {
		t.Fatal("expected zero size for a missing APK")
	}
	if !rep.MonitorEnabled || rep.MonitorInterval != "5m0s" {
		t.Fatalf("unexpected monitor fields: %+v", rep)
	}
}

func TestStatusUnreachableBridgeSkipsPackageQuery(t *testing.T) {
	dir := t.TempDir()

	env := newTestEnv(t)
	env.Apps = []App{{Package: "com.tencent.mm", APK: dir + "/missing.apk"}}
	env.ADB = writeStub(t, dir, "adb",
		"echo \"cannot connect to 127.0.0.1:5555: Connection refused\"\nexit 1\n")

	rep := Status(env)
	if rep.BridgeReachable {
		t.Fatal("expected bridge to be reported unreachable")
	}
	if rep.Apps[0].Installed {
		t.Fatal("install state must stay false without a reachable bridge")
	}
}
