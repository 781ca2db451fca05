package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

// Wizard runs the interactive setup wizard.
// If reader is nil, reads from os.Stdin; if out is nil, writes to os.Stdout.
func Wizard(reader io.Reader, out io.Writer) error {
	if reader == nil {
		reader = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	scanner := bufio.NewScanner(reader)
	setDefaults()

	fmt.Fprintln(out, "trnanalysis setup")
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 48))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Step 1/3: Pipeline directories")
	fmt.Fprintln(out, "  The executable's directory and ../src are always searched.")
	fmt.Fprint(out, "  Extra directories (comma-separated, blank for none): ")
	scanner.Scan()
	if dirs := splitList(scanner.Text()); len(dirs) > 0 {
		viper.Set("search_path", dirs)
		fmt.Fprintf(out, "  Added %d director(ies)\n", len(dirs))
	} else {
		fmt.Fprintln(out, "  Skipped")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Step 2/3: Catalog layout")
	fmt.Fprintf(out, "  Columns in the help listing (default: %d): ", viper.GetInt("catalog.columns"))
	scanner.Scan()
	if cols := strings.TrimSpace(scanner.Text()); cols != "" {
		n, err := strconv.Atoi(cols)
		if err != nil || n < 1 {
			fmt.Fprintf(out, "  %q is not a positive number, keeping default\n", cols)
		} else {
			viper.Set("catalog.columns", n)
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Step 3/3: Logging")
	fmt.Fprint(out, "  Log level [debug/info/warn/error] (default: warn): ")
	scanner.Scan()
	if lvl := strings.TrimSpace(strings.ToLower(scanner.Text())); lvl != "" {
		if _, err := log.ParseLevel(lvl); err != nil {
			fmt.Fprintf(out, "  Unknown level %q, keeping warn\n", lvl)
		} else {
			viper.Set("log_level", lvl)
		}
	}
	fmt.Fprintln(out)

	if err := SaveConfig(); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}

	fmt.Fprintln(out, strings.Repeat("-", 48))
	fmt.Fprintf(out, "Config file: %s\n", ConfigPath())
	fmt.Fprintln(out, "Type 'trnanalysis config show' to see all settings.")

	return nil
}

// WizardNonInteractive writes the default configuration.
func WizardNonInteractive() error {
	setDefaults()
	return SaveConfig()
}

// Validate checks config values and returns a list of issues.
func Validate(cfg *Config) []ConfigIssue {
	var issues []ConfigIssue

	if cfg.Catalog.Columns < 1 {
		issues = append(issues, ConfigIssue{
			Key:      "catalog.columns",
			Severity: "error",
			Message:  fmt.Sprintf("catalog.columns is %d, must be at least 1", cfg.Catalog.Columns),
			Fix:      "trnanalysis config set catalog.columns 3",
		})
	}

	if len(cfg.Runtimes) == 0 {
		issues = append(issues, ConfigIssue{
			Key:      "runtimes",
			Severity: "info",
			Message:  "no runtimes configured, using .py, .sh and .R defaults",
		})
	}
	for _, rt := range cfg.Runtimes {
		if rt.Ext != "" && !strings.HasPrefix(rt.Ext, ".") {
			issues = append(issues, ConfigIssue{
				Key:      "runtimes",
				Severity: "error",
				Message:  fmt.Sprintf("runtime extension %q must start with a dot", rt.Ext),
				Fix:      fmt.Sprintf("use %q", "."+rt.Ext),
			})
			continue
		}
		fields := strings.Fields(rt.Interpreter)
		if len(fields) == 0 {
			issues = append(issues, ConfigIssue{
				Key:      "runtimes",
				Severity: "info",
				Message:  fmt.Sprintf("pipeline_*%s files are run directly", rt.Ext),
			})
			continue
		}
		if _, err := exec.LookPath(fields[0]); err != nil {
			issues = append(issues, ConfigIssue{
				Key:      "runtimes",
				Severity: "warning",
				Message:  fmt.Sprintf("interpreter %q for %s pipelines is not on PATH", fields[0], rt.Ext),
				Fix:      fmt.Sprintf("install %s or change its interpreter in %s", fields[0], ConfigPath()),
			})
		}
	}

	for _, dir := range cfg.ExtraDirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			issues = append(issues, ConfigIssue{
				Key:      "search_path",
				Severity: "warning",
				Message:  fmt.Sprintf("search directory %s does not exist", dir),
				Fix:      "trnanalysis config set search_path <dir>[,<dir>...]",
			})
		}
	}

	if _, err := log.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "log_level",
			Severity: "warning",
			Message:  fmt.Sprintf("unknown log level %q, warn is used", cfg.LogLevel),
			Fix:      "trnanalysis config set log_level warn",
		})
	}

	return issues
}

// ToEnv returns the config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string)

	if dirs := viper.GetStringSlice("search_path"); len(dirs) > 0 {
		env[EnvPrefix+"_SEARCH_PATH"] = strings.Join(dirs, ",")
	}
	env[EnvPrefix+"_CATALOG_COLUMNS"] = strconv.Itoa(viper.GetInt("catalog.columns"))
	env[EnvPrefix+"_CATALOG_DEDUPE"] = strconv.FormatBool(viper.GetBool("catalog.dedupe"))
	env[EnvPrefix+"_CATALOG_STRIP_PREFIX"] = strconv.FormatBool(viper.GetBool("catalog.strip_prefix"))
	if lvl := viper.GetString("log_level"); lvl != "" {
		env[EnvPrefix+"_LOG_LEVEL"] = lvl
	}

	return env
}

// Set sets a config value and saves to disk. search_path takes a
// comma-separated list.
func Set(key, value string) error {
	if key == "search_path" {
		viper.Set(key, splitList(value))
	} else {
		viper.Set(key, value)
	}
	return SaveConfig()
}

// Get retrieves a config value. Lists are comma-joined.
func Get(key string) string {
	switch v := viper.Get(key).(type) {
	case []string:
		return strings.Join(v, ",")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	}
	return viper.GetString(key)
}

// ResetConfig deletes the config file and reloads the defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	viper.Reset()
	_, err := Load()
	return err
}

// SaveConfig writes the current config to ~/.trnanalysis/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}

	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// ShowConfig returns a formatted string of the configuration.
func ShowConfig(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))

	sb.WriteString("Search path\n")
	for _, dir := range cfg.SearchPath() {
		sb.WriteString(fmt.Sprintf("  %s\n", dir))
	}
	sb.WriteString("\n")

	sb.WriteString("Catalog\n")
	sb.WriteString(fmt.Sprintf("  columns:      %d\n", cfg.Catalog.Columns))
	sb.WriteString(fmt.Sprintf("  dedupe:       %t\n", cfg.Catalog.Dedupe))
	sb.WriteString(fmt.Sprintf("  strip_prefix: %t\n", cfg.Catalog.StripPrefix))
	sb.WriteString("\n")

	sb.WriteString("Runtimes\n")
	for _, rt := range cfg.Runtimes {
		interp := rt.Interpreter
		if interp == "" {
			interp = "(direct)"
		}
		sb.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Ext, interp))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("log_level: %s\n", cfg.LogLevel))
	sb.WriteString(fmt.Sprintf("color:     %t\n", cfg.Output.Color))

	return sb.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
