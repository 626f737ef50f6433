// Package config parses process-wide settings from flags and environment
// variables into a single Config struct, validated by validateConfig before
// use. There is no config file format: flags and env vars only, each flag's
// default sourced from its matching environment variable.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/synctree/synctree/internal/meta"
	"github.com/synctree/synctree/internal/processor"
	"github.com/synctree/synctree/internal/queue"
)

// Config holds every process-wide setting the engine needs, assembled once
// at startup and threaded explicitly into the components that need it
// rather than read from package-level globals.
type Config struct {
	ProjectPath string
	Host        string
	Port        int

	Threshold int

	ContentDir       string
	SanitizePolicy   meta.NameSanitizePolicy
	UseLegacyScripts bool

	QueueMaxPayloadBytes int
	QueueTimeoutSeconds  int

	VCSEnabled    bool
	VCSAuthorName string

	LogFormat string
	LogLevel  slog.Level
}

// Parse populates a Config from flag.* with os.Getenv fallbacks: each
// flag's default is whatever the corresponding environment variable holds
// (or a hardcoded default if the variable is unset), so a deployment can
// configure the process purely through its environment while local runs
// can still override with flags.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("treesyncd", flag.ContinueOnError)

	cfg := &Config{}

	fs.StringVar(&cfg.ProjectPath, "project", os.Getenv("TREESYNC_PROJECT"),
		"Path to the project manifest (env: TREESYNC_PROJECT)")
	fs.StringVar(&cfg.Host, "host", getenv("TREESYNC_HOST", "127.0.0.1"),
		"Host to bind the transport to (env: TREESYNC_HOST)")
	fs.IntVar(&cfg.Port, "port", getenvInt("TREESYNC_PORT", 34872),
		"Port to bind the transport to (env: TREESYNC_PORT)")

	fs.IntVar(&cfg.Threshold, "threshold", getenvInt("TREESYNC_THRESHOLD", processor.DefaultThreshold),
		"Change-set size above which a reverse write requires confirmation (env: TREESYNC_THRESHOLD)")

	fs.StringVar(&cfg.ContentDir, "content-dir", os.Getenv("TREESYNC_CONTENT_DIR"),
		"Directory mesh-blob sidecars spill into (env: TREESYNC_CONTENT_DIR)")
	sanitizePolicyFlag := fs.String("sanitize-policy", getenv("TREESYNC_SANITIZE_POLICY", "permissive"),
		"Name sanitization policy: 'permissive' or 'strict' (env: TREESYNC_SANITIZE_POLICY)")
	fs.BoolVar(&cfg.UseLegacyScripts, "legacy-scripts", getenvBool("TREESYNC_LEGACY_SCRIPTS", false),
		"Read scripts as legacy Script/LocalScript classes and write new ones as .lua instead of .luau (env: TREESYNC_LEGACY_SCRIPTS)")

	fs.IntVar(&cfg.QueueMaxPayloadBytes, "queue-max-payload-bytes", getenvInt("TREESYNC_QUEUE_MAX_PAYLOAD_BYTES", queue.DefaultMaxPayloadBytes),
		"Maximum serialized size of a single queued change set (env: TREESYNC_QUEUE_MAX_PAYLOAD_BYTES)")
	fs.IntVar(&cfg.QueueTimeoutSeconds, "queue-timeout-seconds", getenvInt("TREESYNC_QUEUE_TIMEOUT_SECONDS", int(queue.DefaultTimeout.Seconds())),
		"Long-poll timeout for a subscriber's read (env: TREESYNC_QUEUE_TIMEOUT_SECONDS)")

	fs.BoolVar(&cfg.VCSEnabled, "vcs", getenvBool("TREESYNC_VCS", true),
		"Record an audit-trail commit after reverse writes, when the workspace is a git work tree (env: TREESYNC_VCS)")
	fs.StringVar(&cfg.VCSAuthorName, "vcs-author", getenv("TREESYNC_VCS_AUTHOR", "treesyncd"),
		"Author name for audit-trail commits (env: TREESYNC_VCS_AUTHOR)")

	fs.StringVar(&cfg.LogFormat, "log-format", getenv("TREESYNC_LOG_FORMAT", "text"),
		"Log format: 'text' or 'json' (env: TREESYNC_LOG_FORMAT)")
	logLevelFlag := fs.String("log-level", getenv("TREESYNC_LOG_LEVEL", "info"),
		"Log level: 'debug', 'info', 'warn', 'error' (env: TREESYNC_LOG_LEVEL)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.LogLevel = parseLogLevel(*logLevelFlag)
	cfg.SanitizePolicy = parseSanitizePolicy(*sanitizePolicyFlag)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.ProjectPath == "" {
		return fmt.Errorf("config: --project is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("config: --port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.Threshold < 0 {
		return fmt.Errorf("config: --threshold must not be negative, got %d", cfg.Threshold)
	}
	if cfg.QueueMaxPayloadBytes <= 0 {
		return fmt.Errorf("config: --queue-max-payload-bytes must be positive, got %d", cfg.QueueMaxPayloadBytes)
	}
	if cfg.QueueTimeoutSeconds <= 0 {
		return fmt.Errorf("config: --queue-timeout-seconds must be positive, got %d", cfg.QueueTimeoutSeconds)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("config: --log-format must be 'text' or 'json', got %q", cfg.LogFormat)
	}
	return nil
}

// Logger builds the process-wide slog handler per cfg.LogFormat/LogLevel
// (text handler for local runs, JSON handler in production, selected by a
// flag rather than inferred from environment).
func Logger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(raw string) slog.Level {
	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	if level, ok := levels[strings.ToLower(raw)]; ok {
		return level
	}
	return slog.LevelInfo
}

func parseSanitizePolicy(raw string) meta.NameSanitizePolicy {
	if strings.EqualFold(raw, "strict") {
		return meta.Strict
	}
	return meta.Permissive
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
