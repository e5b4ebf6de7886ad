package config

import (
	"os"
	"path/filepath"
)

// ConfigFileName is the per-project and global configuration file name
const ConfigFileName = ".pqgrep.kdl"

type Config struct {
	Version int
	Project Project
	Search  Search
	Output  Output

	// Extensions lists the file extensions selected during directory
	// enumeration (with leading dot).
	Extensions []string

	// Exclude lists doublestar glob patterns skipped during directory
	// enumeration.
	Exclude []string
}

type Project struct {
	Root string
	Name string
}

type Search struct {
	Offset int // Default number of matches to skip per file
	Limit  int // Default max matches per file, 0 = unbounded
}

type Output struct {
	TrimWidth int    // Context budget for string values, 0 = unlimited
	Color     string // "auto", "always", "never"
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot loads configuration, merging a global ~/.pqgrep.kdl base with
// a project-level .pqgrep.kdl found in rootDir (project overrides base, base
// exclusions are preserved).
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Step 1: Load global base config from ~/.pqgrep.kdl (if exists)
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: Load project-specific config from project directory
	var projectConfig *Config
	if kdlCfg, err := LoadKDL(searchDir); err == nil && kdlCfg != nil {
		projectConfig = kdlCfg
	} else if err != nil {
		return nil, err
	}

	// Step 3: Merge configs
	if baseConfig != nil && projectConfig != nil {
		return mergeConfigs(baseConfig, projectConfig), nil
	} else if projectConfig != nil {
		return projectConfig, nil
	} else if baseConfig != nil {
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	return Default(), nil
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return &Config{
		Version: 1,
		Project: Project{
			Root: cwd,
		},
		Search: Search{
			Offset: 0,
			Limit:  0,
		},
		Output: Output{
			TrimWidth: 0,
			Color:     "auto",
		},
		Extensions: []string{".parquet"},
		Exclude: []string{
			// Hidden directories (catch-all for dot directories)
			"**/.*/**",

			// Package managers & dependencies
			"**/node_modules/**",
			"**/vendor/**",
			"**/bower_components/**",
			"**/jspm_packages/**",
			"**/target/**",
			"**/__pycache__/**",
		},
	}
}

// mergeConfigs merges a base config with a project config
// Project config takes precedence, but base exclusions are preserved
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}

		merged.Exclude = make([]string, 0, len(excludeMap))
		for _, pattern := range base.Exclude {
			if excludeMap[pattern] {
				merged.Exclude = append(merged.Exclude, pattern)
				delete(excludeMap, pattern)
			}
		}
		for _, pattern := range project.Exclude {
			if excludeMap[pattern] {
				merged.Exclude = append(merged.Exclude, pattern)
				delete(excludeMap, pattern)
			}
		}
	}

	// Extensions: project overrides base completely if specified
	if len(merged.Extensions) == 0 && len(base.Extensions) > 0 {
		merged.Extensions = base.Extensions
	}

	return &merged
}

// ResolveRoot makes Project.Root absolute relative to dir.
func ResolveRoot(cfg *Config, dir string) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = dir
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(dir, cfg.Project.Root))
	}
}
