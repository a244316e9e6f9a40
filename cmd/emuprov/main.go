// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	core "github.com/llzmgjzhy/monitor-badminton/internal/provision"
)

// setupTracing wires the OTLP HTTP exporter when an endpoint is configured;
// without one the default no-op tracer stays in place.
func setupTracing(ctx context.Context) func() {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func() {}
	}
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "otlp exporter:", err)
		return func() {}
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	return func() { _ = provider.Shutdown(context.Background()) }
}

func main() {
	ctx := context.Background()
	shutdown := setupTracing(ctx)
	defer shutdown()

	env := core.Detect()
	env.Context = ctx

	root := &cobra.Command{
		Use:   "emuprov",
		Short: "Containerized emulator provisioner (bridge wait, APK install, app launch, monitor loop)",
	}

	// up: the whole sequence, blocking for the container lifetime
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Run the full provisioning sequence and block on the entrypoint pid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return core.Provision(env)
		},
	}
	root.AddCommand(upCmd)

	// wait
	var waitTimeout, waitInterval time.Duration
	waitCmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for the device bridge to become reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			core.EnsureServer(env)
			if err := core.WaitForBridge(env, waitTimeout, waitInterval); err != nil {
				return err
			}
			fmt.Printf("Bridge reachable at %s\n", env.DeviceAddr)
			return nil
		},
	}
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", env.ConnectTimeout, "total wait budget")
	waitCmd.Flags().DurationVar(&waitInterval, "interval", env.ConnectInterval, "poll interval")
	root.AddCommand(waitCmd)

	// install
	var instPkg, instAPK string
	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the fixed payloads (or --pkg/--apk) unless already present",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (instPkg == "") != (instAPK == "") {
				return errors.New("--pkg and --apk must be given together")
			}
			apps := env.Apps
			if instPkg != "" {
				apps = []core.App{{Package: instPkg, APK: instAPK}}
			}
			for _, app := range apps {
				if err := core.InstallIfNeeded(env, app.Package, app.APK); err != nil {
					return err
				}
				fmt.Printf("Installed (or present): %s\n", app.Package)
			}
			return nil
		},
	}
	installCmd.Flags().StringVar(&instPkg, "pkg", "", "package id")
	installCmd.Flags().StringVar(&instAPK, "apk", "", "APK payload path")
	root.AddCommand(installCmd)

	// launch
	var launchComponent string
	launchCmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch the fixed apps (or --component) via intent dispatch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if launchComponent != "" {
				core.LaunchApp(env, launchComponent)
				return nil
			}
			for _, app := range env.Apps {
				core.LaunchApp(env, app.Component)
			}
			return nil
		},
	}
	launchCmd.Flags().StringVar(&launchComponent, "component", "", "package/activity to launch")
	root.AddCommand(launchCmd)

	// monitor: setup + loop in the foreground
	var monInterval time.Duration
	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run monitor setup and the polling loop in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			if monInterval > 0 {
				env.MonitorInterval = monInterval
			}
			env.MonitorEnabled = true
			if !core.SetupMonitor(cmd.Context(), env) {
				return errors.New("monitor setup did not start")
			}
			<-cmd.Context().Done()
			return nil
		},
	}
	monitorCmd.Flags().DurationVar(&monInterval, "interval", 0, "override monitor interval")
	root.AddCommand(monitorCmd)

	// status
	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Snapshot bridge reachability, payload install state, monitor config",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := core.Status(env)
			if statusJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			state := "unreachable"
			if rep.BridgeReachable {
				state = "reachable"
			}
			fmt.Printf("Bridge:  %s (%s)\n", rep.DeviceAddr, state)
			for _, app := range rep.Apps {
				installed := "not installed"
				if app.Installed {
					installed = "installed"
				}
				fmt.Printf("%-18s %s\n  payload: %s (%s)\n",
					app.Package, installed, app.APK, units.HumanSize(float64(app.SizeBytes)))
			}
			fmt.Printf("Monitor: enabled=%v interval=%s script=%s\n",
				rep.MonitorEnabled, rep.MonitorInterval, rep.MonitorScript)
			if rep.EntrypointPID > 0 {
				fmt.Printf("Entrypoint: pid=%d alive=%v\n", rep.EntrypointPID, rep.EntrypointAlive)
			}
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output JSON")
	root.AddCommand(statusCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
