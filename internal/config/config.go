// Package config loads the JSON settings file that drives the assessment
// pipeline and HTTP server. Fields omitted from the file fall back to the
// defaults baked into the Get* accessors, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JimMcKeown17/streamlit-zazi-izandi-data-sub000/internal/grouping"
)

// DefaultConfigPath is where the CLI looks for settings when no -config flag
// is given.
const DefaultConfigPath = "config/settings.json"

// Config is the root configuration. The schema matches the /api/config
// endpoint so the same JSON describes both startup and runtime state.
type Config struct {
	// Storage
	DBPath    *string `json:"db_path,omitempty"`
	ExportDir *string `json:"export_dir,omitempty"`

	// Pipeline params
	GroupSize             *int    `json:"group_size,omitempty"`
	SameProgressMinGroups *int    `json:"same_progress_min_groups,omitempty"`
	Timezone              *string `json:"timezone,omitempty"`

	// Server params
	ListenAddr  *string `json:"listen_addr,omitempty"`
	AdminRoutes *bool   `json:"admin_routes,omitempty"`

	// AI narrative params (optional)
	AIBaseURL *string `json:"ai_base_url,omitempty"`
	AIModel   *string `json:"ai_model,omitempty"`
	AIKeyEnv  *string `json:"ai_key_env,omitempty"` // env var holding the API key
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }

// Empty returns a Config with all fields unset, which resolves to defaults
// through the Get* accessors.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The file must have a .json extension
// and stay under the size cap.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.GroupSize != nil && *c.GroupSize < 2 {
		return fmt.Errorf("group_size must be at least 2, got %d", *c.GroupSize)
	}
	if c.SameProgressMinGroups != nil && *c.SameProgressMinGroups < 2 {
		return fmt.Errorf("same_progress_min_groups must be at least 2, got %d", *c.SameProgressMinGroups)
	}
	if c.Timezone != nil && *c.Timezone != "" {
		if _, err := time.LoadLocation(*c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", *c.Timezone, err)
		}
	}
	return nil
}

// GetDBPath returns the sqlite database path or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "zazi-izandi.db"
	}
	return *c.DBPath
}

// GetExportDir returns the directory for tracker and report exports.
func (c *Config) GetExportDir() string {
	if c.ExportDir == nil || *c.ExportDir == "" {
		return "exports"
	}
	return *c.ExportDir
}

// GetGroupSize returns the target teaching group size.
func (c *Config) GetGroupSize() int {
	if c.GroupSize == nil {
		return grouping.DefaultGroupSize
	}
	return *c.GroupSize
}

// GetSameProgressMinGroups returns the number of co-located groups that
// triggers a same-progress flag.
func (c *Config) GetSameProgressMinGroups() int {
	if c.SameProgressMinGroups == nil {
		return 3
	}
	return *c.SameProgressMinGroups
}

// GetLocation resolves the configured timezone, falling back to the
// program's home timezone when unset or unknown.
func (c *Config) GetLocation() *time.Location {
	name := "Africa/Johannesburg"
	if c.Timezone != nil && *c.Timezone != "" {
		name = *c.Timezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetListenAddr returns the HTTP listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetAdminRoutes reports whether the debug/admin routes should be mounted.
func (c *Config) GetAdminRoutes() bool {
	if c.AdminRoutes == nil {
		return false
	}
	return *c.AdminRoutes
}

// GetAIBaseURL returns the chat-completions endpoint base URL.
func (c *Config) GetAIBaseURL() string {
	if c.AIBaseURL == nil || *c.AIBaseURL == "" {
		return "https://api.openai.com/v1"
	}
	return *c.AIBaseURL
}

// GetAIModel returns the model used for narrative summaries.
func (c *Config) GetAIModel() string {
	if c.AIModel == nil || *c.AIModel == "" {
		return "gpt-4o-mini"
	}
	return *c.AIModel
}

// GetAIKey reads the API key from the configured environment variable.
// Returns "" when no key is available; callers treat that as AI disabled.
func (c *Config) GetAIKey() string {
	env := "OPENAI_API_KEY"
	if c.AIKeyEnv != nil && *c.AIKeyEnv != "" {
		env = *c.AIKeyEnv
	}
	return os.Getenv(env)
}
