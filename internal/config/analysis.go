package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
// This is the single source of truth for all default analysis values.
const DefaultConfigPath = "config/analysis.defaults.json"

// AnalysisConfig represents the root configuration for the analysis
// pipeline. The schema matches the /api/analysis/params endpoint so the
// same JSON can be used for both startup configuration and runtime
// updates.
type AnalysisConfig struct {
	// Movement analyzer params
	MovementThreshold     *float64 `json:"movement_threshold,omitempty"`
	SampleInterval        *int     `json:"sample_interval,omitempty"`
	RULAHighRiskThreshold *int     `json:"rula_high_risk_threshold,omitempty"`
	REBAHighRiskThreshold *int     `json:"reba_high_risk_threshold,omitempty"`

	// Score calculator params
	Sensitivity *float64 `json:"sensitivity,omitempty"`

	// Worker params
	ProgressInterval *string `json:"progress_interval,omitempty"` // duration string like "250ms"

	// Server params
	ListenAddr *string `json:"listen_addr,omitempty"`
	DBPath     *string `json:"db_path,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
// Use LoadAnalysisConfig to load actual values from the defaults file.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
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

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical analysis defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.MovementThreshold != nil {
		if *c.MovementThreshold < 0 || *c.MovementThreshold > 180 {
			return fmt.Errorf("movement_threshold must be between 0 and 180 degrees, got %f", *c.MovementThreshold)
		}
	}

	if c.SampleInterval != nil {
		if *c.SampleInterval < 1 {
			return fmt.Errorf("sample_interval must be at least 1, got %d", *c.SampleInterval)
		}
	}

	if c.RULAHighRiskThreshold != nil {
		if *c.RULAHighRiskThreshold < 1 {
			return fmt.Errorf("rula_high_risk_threshold must be at least 1, got %d", *c.RULAHighRiskThreshold)
		}
	}

	if c.REBAHighRiskThreshold != nil {
		if *c.REBAHighRiskThreshold < 1 {
			return fmt.Errorf("reba_high_risk_threshold must be at least 1, got %d", *c.REBAHighRiskThreshold)
		}
	}

	if c.Sensitivity != nil {
		if *c.Sensitivity <= 0 {
			return fmt.Errorf("sensitivity must be positive, got %f", *c.Sensitivity)
		}
	}

	// Validate ProgressInterval can be parsed if set
	if c.ProgressInterval != nil && *c.ProgressInterval != "" {
		if _, err := time.ParseDuration(*c.ProgressInterval); err != nil {
			return fmt.Errorf("invalid progress_interval '%s': %w", *c.ProgressInterval, err)
		}
	}

	return nil
}

// GetMovementThreshold returns the movement_threshold value or the default.
func (c *AnalysisConfig) GetMovementThreshold() float64 {
	if c.MovementThreshold == nil {
		return 15.0 // default
	}
	return *c.MovementThreshold
}

// GetSampleInterval returns the sample_interval value or the default.
func (c *AnalysisConfig) GetSampleInterval() int {
	if c.SampleInterval == nil {
		return 1 // default: analyze every frame
	}
	return *c.SampleInterval
}

// GetRULAHighRiskThreshold returns the rula_high_risk_threshold value or the default.
func (c *AnalysisConfig) GetRULAHighRiskThreshold() int {
	if c.RULAHighRiskThreshold == nil {
		return 4
	}
	return *c.RULAHighRiskThreshold
}

// GetREBAHighRiskThreshold returns the reba_high_risk_threshold value or the default.
func (c *AnalysisConfig) GetREBAHighRiskThreshold() int {
	if c.REBAHighRiskThreshold == nil {
		return 4
	}
	return *c.REBAHighRiskThreshold
}

// GetSensitivity returns the sensitivity value or the default.
func (c *AnalysisConfig) GetSensitivity() float64 {
	if c.Sensitivity == nil {
		return 1.0
	}
	return *c.Sensitivity
}

// GetProgressInterval parses and returns the ProgressInterval as a time.Duration.
func (c *AnalysisConfig) GetProgressInterval() time.Duration {
	if c.ProgressInterval == nil || *c.ProgressInterval == "" {
		return 250 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.ProgressInterval)
	if err != nil {
		return 250 * time.Millisecond // default on parse error
	}
	return d
}

// GetListenAddr returns the listen_addr value or the default.
func (c *AnalysisConfig) GetListenAddr() string {
	if c.ListenAddr == nil || *c.ListenAddr == "" {
		return ":8080"
	}
	return *c.ListenAddr
}

// GetDBPath returns the db_path value or the default.
func (c *AnalysisConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "analysis.db"
	}
	return *c.DBPath
}
