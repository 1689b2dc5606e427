package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/liftcalc/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyFileConfig(cmd *cobra.Command, cfg config.FileConfig) {
	applyStringConfig(cmd, "db", &flagDB, cfg.Storage.DB)
	applyStringConfig(cmd, "output", &flagOutput, cfg.Calculator.Output)
	applyStringConfig(cmd, "share-url", &flagShareURL, cfg.Calculator.ShareURL)
	applySliceConfig(cmd, "formulas", &flagFormulas, cfg.Calculator.Formulas)
	applyStringConfig(cmd, "log-level", &flagLogLevel, cfg.Log.Level)
	applyStringConfig(cmd, "log-file", &flagLogFile, cfg.Log.File)
	applyBoolConfig(cmd, "log-json", &flagLogJSON, cfg.Log.JSON)
	applyBoolConfig(cmd, "log-stderr", &flagLogStderr, cfg.Log.Stderr)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applySliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# liftcalc configuration
# Uncomment a value to enable it. CLI flags override config values.

[calculator]
# formulas = ["epley", "brzycki", "lombardi"]  # Estimators aggregated by median
# output = %q                                # text, json or yaml
# share-url = "https://example.com/1rm"         # Base URL for share links

[storage]
# db = %q

[log]
# level = %q     # trace, debug, info, warn, error
# file = %q
# json = false
# stderr = false

[server]
# addr = %q
`,
		defaultOutput,
		config.DefaultDBPath(),
		defaultLogLevel,
		config.DefaultLogPath(),
		defaultAddr,
	)
}
