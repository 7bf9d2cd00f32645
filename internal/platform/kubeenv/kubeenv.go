// Package kubeenv prepares the process environment the helm binary runs in:
// a contained state directory and, when supplied, a kubeconfig written to disk.
package kubeenv

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Prepare creates the helm home directory, points helm's XDG lookup paths at
// it so all helm state stays contained, and materializes the kubeconfig blob
// when one was supplied. It returns the directory plugins get cached under.
func Prepare(helmHome, kubeconfig string, logger *slog.Logger) (string, error) {
	if err := os.MkdirAll(helmHome, 0o755); err != nil {
		return "", fmt.Errorf("create helm home %s: %w", helmHome, err)
	}

	for _, key := range []string{"XDG_DATA_HOME", "XDG_CONFIG_HOME", "XDG_CACHE_HOME"} {
		if err := os.Setenv(key, helmHome); err != nil {
			return "", fmt.Errorf("set %s: %w", key, err)
		}
	}

	if kubeconfig != "" {
		path := filepath.Join(helmHome, "kubeconfig")
		if err := os.WriteFile(path, []byte(kubeconfig), 0o600); err != nil {
			return "", fmt.Errorf("write kubeconfig: %w", err)
		}
		if err := os.Setenv("KUBECONFIG", path); err != nil {
			return "", fmt.Errorf("set KUBECONFIG: %w", err)
		}
		logger.Debug("kubeconfig written", "path", path)
	}

	return PluginCacheRoot(helmHome), nil
}

// PluginCacheRoot is where helm leaves plugin working directories behind.
func PluginCacheRoot(helmHome string) string {
	return filepath.Join(helmHome, "plugins")
}
