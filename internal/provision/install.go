// Copyright (C) 2026 llzmgjzhy
// License: AGPL-3.0-only

package provision

import (
	"fmt"
	"os"

	"github.com/containerd/errdefs"
	units "github.com/docker/go-units"
	"go.opentelemetry.io/otel/attribute"
)

// InstallIfNeeded installs an APK payload unless the package is already
// present on the device. Preconditions: the payload must exist locally.
// On a failed install it makes one best-effort attempt to install the ARM
// translation layer, then retries the install exactly once.
func InstallIfNeeded(env Env, pkg, apkPath string) error {
	_, span := startSpan(
		env,
		"provision.InstallIfNeeded",
		attribute.String("package", pkg),
		attribute.String("apk", apkPath),
	)
	defer span.End()

	st, err := os.Stat(apkPath)
	if err != nil {
		err = fmt.Errorf("apk payload %s for %s: %w (%w)", apkPath, pkg, err, errdefs.ErrNotFound)
		recordSpanError(span, err)
		logWarn(env, "apk payload missing", "package", pkg, "apk", apkPath)
		return err
	}

	installed, err := PackageInstalled(env, pkg)
	if err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("list packages: %w", err)
	}
	if installed {
		span.SetAttributes(attribute.Bool("already_installed", true))
		logEvent(env, "package already installed", "package", pkg)
		return nil
	}

	logEvent(env, "installing package",
		"package", pkg,
		"apk", apkPath,
		"size", units.HumanSize(float64(st.Size())),
	)
	err = installAPK(env, apkPath)
	if err == nil {
		logEvent(env, "package installed", "package", pkg)
		return nil
	}
	logWarn(env, "install failed, trying compatibility layer",
		"package", pkg,
		"error", err.Error(),
	)
	installCompatLayer(env)

	// Single retry, no further fallback.
	if err := installAPK(env, apkPath); err != nil {
		err = fmt.Errorf("install %s after compat retry: %w", pkg, err)
		recordSpanError(span, err)
		return err
	}
	span.SetAttributes(attribute.Bool("compat_retry", true))
	logEvent(env, "package installed after compat retry", "package", pkg)
	return nil
}

// installCompatLayer installs the foreign-architecture translation layer.
// Best effort: its own failure is logged and ignored.
func installCompatLayer(env Env) {
	if env.CompatAPK == "" {
		return
	}
	logEvent(env, "installing compatibility layer", "apk", env.CompatAPK)
	if err := installAPK(env, env.CompatAPK); err != nil {
		logWarn(env, "compatibility layer install failed", "error", err.Error())
	}
}
