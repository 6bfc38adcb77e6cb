package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-gistembed/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxURLLength       = 2048  // Browser limit
	MaxUserAgentLength = 200   // Generous for "name/version (+url)"
	MaxClassNameLength = 100   // Single CSS class
	MaxClassNames      = 20    // Classes added to one embed
	MaxCSSLength       = 65536 // Inline highlight CSS
	MaxDirLength       = 4096  // PATH_MAX on Linux
	MaxConcurrency     = 64    // Simultaneous gist fetches
)

// Log levels accepted by logging.level.
const (
	LogLevelNone   = "none"
	LogLevelNormal = "normal"
	LogLevelDebug  = "debug"
)

// Config holds all configuration for a gistembed run.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Gist    GistConfig    `yaml:"gist"`
	Style   StyleConfig   `yaml:"style"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// GistConfig defines how references are resolved and spliced.
type GistConfig struct {
	ReplaceParentParagraph bool      `yaml:"replaceParentParagraph"`
	OmitCodeBlocks         bool      `yaml:"omitCodeBlocks"`
	ClassNames             ClassList `yaml:"classNames"` // "a b" or [a, b]
	BaseURL                string    `yaml:"baseURL"`    // Empty = https://gist.github.com
	UserAgent              string    `yaml:"userAgent"`
	Concurrency            int       `yaml:"concurrency"` // 0 = unbounded
	IgnoreErrors           bool      `yaml:"ignoreErrors"`
}

// StyleConfig defines what is injected next to embedded gists.
type StyleConfig struct {
	Stylesheets  bool   `yaml:"stylesheets"`  // Link the stylesheets gists advertise
	HighlightCSS string `yaml:"highlightCSS"` // Empty = built-in highlight rule
}

// LoggingConfig defines log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"` // "none", "normal", "debug"
}

// ClassList is a list of CSS class names. In YAML it is written either as a
// whitespace-separated string or as a sequence of strings.
type ClassList []string

// UnmarshalYAML accepts both the string and the sequence form.
func (c *ClassList) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*c = strings.Fields(single)
		return nil
	}

	var list []string
	if err := unmarshal(&list); err != nil {
		return fmt.Errorf("classNames: expected a string or a list of strings: %w", err)
	}
	var out ClassList
	for _, item := range list {
		out = append(out, strings.Fields(item)...)
	}
	*c = out
	return nil
}

// MarshalYAML writes the string form.
func (c ClassList) MarshalYAML() (any, error) {
	return strings.Join(c, " "), nil
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxDirLength); err != nil {
		return err
	}

	// Validate gist fields
	if err := validateFieldLength("gist.baseURL", c.Gist.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if c.Gist.BaseURL != "" {
		u, err := url.Parse(c.Gist.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: gist.baseURL %q (must be an absolute http or https URL)", ErrInvalidValue, c.Gist.BaseURL)
		}
	}
	if err := validateFieldLength("gist.userAgent", c.Gist.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if len(c.Gist.ClassNames) > MaxClassNames {
		return fmt.Errorf("%w: gist.classNames has %d entries (max %d)", ErrInvalidValue, len(c.Gist.ClassNames), MaxClassNames)
	}
	for i, name := range c.Gist.ClassNames {
		if err := validateFieldLength(fmt.Sprintf("gist.classNames[%d]", i), name, MaxClassNameLength); err != nil {
			return err
		}
	}
	if c.Gist.Concurrency < 0 || c.Gist.Concurrency > MaxConcurrency {
		return fmt.Errorf("%w: gist.concurrency must be between 0 and %d, got %d", ErrInvalidValue, MaxConcurrency, c.Gist.Concurrency)
	}

	// Validate style fields
	if err := validateFieldLength("style.highlightCSS", c.Style.HighlightCSS, MaxCSSLength); err != nil {
		return err
	}

	switch c.Logging.Level {
	case "", LogLevelNone, LogLevelNormal, LogLevelDebug:
		// valid
	default:
		return fmt.Errorf("%w: logging.level %q (must be none, normal, or debug)", ErrInvalidValue, c.Logging.Level)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
// Single-child paragraphs are replaced, code blocks are left alone and
// gist stylesheets are linked.
func DefaultConfig() *Config {
	return &Config{
		Gist: GistConfig{
			ReplaceParentParagraph: true,
			OmitCodeBlocks:         true,
		},
		Style:   StyleConfig{Stylesheets: true},
		Logging: LoggingConfig{Level: LogLevelNormal},
	}
}

// Marshal encodes c as YAML that LoadConfig reads back.
func (c *Config) Marshal() ([]byte, error) {
	return yamlutil.Marshal(c)
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrConfigParse, configPath, yamlutil.FormatError(err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-gistembed/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-gistembed", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
