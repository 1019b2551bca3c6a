// Package config loads l20n2po settings from .l20n2po.yaml and merges them
// with command-line flags.
//
// Example:
//
//	project:
//	  name: loki
//	  version: "1.0"
//	  bugs_address: https://example.org/bugs
//	  copyright_holder: Loki developers
//	language: pt_BR
//	extensions: [.ftl, .l20n]
//	log_level: info
//	jobs: 4
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	po "github.com/minios-linux/l20n2po/pofile"
)

// FileName is the default config file name, looked up in the working
// directory.
const FileName = ".l20n2po.yaml"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config is the top-level .l20n2po.yaml structure.
type Config struct {
	// Project fills the generated header unit.
	Project Project `yaml:"project,omitempty"`
	// Language is the target language for PO output (gettext form, e.g. "pt_BR").
	Language string `yaml:"language,omitempty"`
	// POT writes templates instead of PO files.
	POT bool `yaml:"pot,omitempty"`
	// Template is the prior PO file or directory to carry targets from.
	Template string `yaml:"template,omitempty"`
	// Extensions selects source files in directory mode.
	Extensions []string `yaml:"extensions,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
	// Jobs limits parallel conversions in directory mode (0 = CPU count).
	Jobs int `yaml:"jobs,omitempty"`
}

// Project describes the package the translations belong to.
type Project struct {
	Name            string `yaml:"name,omitempty"`
	Version         string `yaml:"version,omitempty"`
	BugsAddress     string `yaml:"bugs_address,omitempty"`
	CopyrightHolder string `yaml:"copyright_holder,omitempty"`
}

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Extensions: []string{".ftl", ".l20n"},
		LogLevel:   "info",
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the config at path. An empty path means FileName in the
// working directory, whose absence is not an error; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// normalize applies defaults and validates values.
func (c *Config) normalize() error {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q (valid: %s)", c.LogLevel, strings.Join(LogLevels, ", "))
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}

	if len(c.Extensions) == 0 {
		c.Extensions = Default().Extensions
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return fmt.Errorf("extensions[%d] is empty", i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}

	if c.Language != "" {
		lang, err := NormalizeLanguage(c.Language)
		if err != nil {
			return err
		}
		c.Language = lang
	}
	return nil
}

func validLogLevel(level string) bool {
	for _, l := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// NormalizeLanguage validates a language code and returns it in gettext
// form: "pt-br" and "pt_BR" both become "pt_BR".
func NormalizeLanguage(code string) (string, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", code, err)
	}
	return strings.ReplaceAll(tag.String(), "-", "_"), nil
}

// ---------------------------------------------------------------------------
// Flags
// ---------------------------------------------------------------------------

// ApplyFlags overrides config values with the flags explicitly set on fs.
// Recognized flags: pot, template, language, log-level, jobs.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	if fs.Changed("pot") {
		v, err := fs.GetBool("pot")
		if err != nil {
			return err
		}
		c.POT = v
	}
	if fs.Changed("template") {
		v, err := fs.GetString("template")
		if err != nil {
			return err
		}
		c.Template = v
	}
	if fs.Changed("language") {
		v, err := fs.GetString("language")
		if err != nil {
			return err
		}
		c.Language = v
	}
	if fs.Changed("log-level") {
		c.LogLevel = fs.Lookup("log-level").Value.String()
	}
	if fs.Changed("jobs") {
		v, err := fs.GetInt("jobs")
		if err != nil {
			return err
		}
		c.Jobs = v
	}
	return c.normalize()
}

// HeaderInfo returns the header metadata for generated files.
func (c *Config) HeaderInfo(generator string) po.HeaderInfo {
	return po.HeaderInfo{
		Package:         c.Project.Name,
		Version:         c.Project.Version,
		BugsAddress:     c.Project.BugsAddress,
		CopyrightHolder: c.Project.CopyrightHolder,
		Language:        c.Language,
		Generator:       generator,
		Template:        c.POT,
	}
}
