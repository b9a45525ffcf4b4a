package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Array comparison methods for the structural differ
const (
	ArrayMethodLCS        = "lcs"
	ArrayMethodPositional = "positional"
)

// Key cases understood by the designer serializer
const (
	KeyCaseNone       = ""
	KeyCaseSnake      = "snake"
	KeyCaseCamel      = "camel"
	KeyCaseLowerCamel = "lower_camel"
	KeyCaseKebab      = "kebab"
)

// Environment variables read by ApplyEnv
const (
	EnvPort         = "PORT"
	EnvTemplatesDir = "JSONBENCH_TEMPLATES_DIR"
)

// Config represents the complete configuration for jsonbench
type Config struct {
	Indent    int             `yaml:"indent"`
	Lenient   bool            `yaml:"lenient"`
	Templates TemplatesConfig `yaml:"templates"`
	Server    ServerConfig    `yaml:"server"`
	Diff      DiffConfig      `yaml:"diff"`
	Designer  DesignerConfig  `yaml:"designer"`
	Log       LogConfig       `yaml:"log"`
}

// TemplatesConfig controls the on-disk template store
type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig controls the HTTP service
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	MaxBody int64  `yaml:"max_body"`
}

// DiffConfig holds the comparison defaults
type DiffConfig struct {
	ArrayMethod       string `yaml:"array_method"`
	ShowModifications bool   `yaml:"show_modifications"`
	DetectCircular    bool   `yaml:"detect_circular"`
	MaxDepth          int    `yaml:"max_depth"`
	Inline            bool   `yaml:"inline"`
}

// DesignerConfig holds structure designer options
type DesignerConfig struct {
	KeyCase string `yaml:"key_case"`
}

// LogConfig controls the console logger
type LogConfig struct {
	Level string `yaml:"level"`
	Color bool   `yaml:"color"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Indent:  2,
		Lenient: false,
		Templates: TemplatesConfig{
			Dir: "templates",
		},
		Server: ServerConfig{
			Addr:    ":3001",
			MaxBody: 10 << 20,
		},
		Diff: DiffConfig{
			ArrayMethod:       ArrayMethodLCS,
			ShowModifications: true,
			DetectCircular:    true,
			MaxDepth:          0,
			Inline:            false,
		},
		Designer: DesignerConfig{
			KeyCase: KeyCaseNone,
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFileFrom(currentDir)
}

func findConfigFileFrom(dir string) string {
	configNames := []string{".jsonbench.yml", ".jsonbench.yaml", "jsonbench.yml", "jsonbench.yaml"}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			// Reached root directory
			break
		}
		dir = parentDir
	}

	return ""
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Indent < 0 || c.Indent > 10 {
		result = multierror.Append(result, fmt.Errorf("indent must be between 0 and 10, got %d", c.Indent))
	}
	if strings.TrimSpace(c.Templates.Dir) == "" {
		result = multierror.Append(result, fmt.Errorf("templates.dir must not be empty"))
	}
	if c.Server.MaxBody < 0 {
		result = multierror.Append(result, fmt.Errorf("server.max_body must not be negative"))
	}
	switch c.Diff.ArrayMethod {
	case ArrayMethodLCS, ArrayMethodPositional:
	default:
		result = multierror.Append(result, fmt.Errorf("diff.array_method must be %q or %q, got %q",
			ArrayMethodLCS, ArrayMethodPositional, c.Diff.ArrayMethod))
	}
	if c.Diff.MaxDepth < 0 {
		result = multierror.Append(result, fmt.Errorf("diff.max_depth must not be negative"))
	}
	switch c.Designer.KeyCase {
	case KeyCaseNone, KeyCaseSnake, KeyCaseCamel, KeyCaseLowerCamel, KeyCaseKebab:
	default:
		result = multierror.Append(result, fmt.Errorf("designer.key_case %q is not supported", c.Designer.KeyCase))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log.level %q is not supported", c.Log.Level))
	}

	return result.ErrorOrNil()
}

// ApplyEnv overlays settings taken from the environment. PORT is the bare
// port number used by hosting platforms.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if port, ok := lookup(EnvPort); ok && port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			c.Server.Addr = ":" + port
		}
	}
	if dir, ok := lookup(EnvTemplatesDir); ok && dir != "" {
		c.Templates.Dir = dir
	}
}

// CLIOverrides carries flag values that take precedence over the file.
// Nil fields were not set on the command line.
type CLIOverrides struct {
	Lenient *bool
	Debug   bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, overrides CLIOverrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.ApplyEnv(nil)

	if overrides.Lenient != nil {
		cfg.Lenient = *overrides.Lenient
	}
	if overrides.Debug {
		cfg.Log.Level = "debug"
	}

	return cfg, nil
}
