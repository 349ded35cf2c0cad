package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andyballingall/aftercare/internal/fs"
	"github.com/andyballingall/aftercare/internal/validator"
)

const (
	ConfigFile   = ".aftercare.yml"
	ConfigEnvVar = "AFTERCARE_CONFIG"
)

const DefaultConfigContent = `# aftercare configuration

# ROOT
#
# The directory holding the generated files, relative to this file. When
# omitted, the directory containing this file is used.
root: "lib"

# LOG FILE
#
# When set, a structured debug log is appended to this file in addition to
# the console output. AFTERCARE_LOG_FILE takes precedence.
# logFile: ".aftercare.log"

# REWRITE
#
# Settings for 'aftercare rewrite', which post-processes compiled JavaScript.
rewrite:
  # Appended to import specifiers which do not already end with it.
  extension: ".js"

  # Top-level directories referenced without a relative prefix, e.g.
  # import { X } from 'core/x'. They are rewritten into relative paths
  # according to the depth of the importing file below root.
  aliases:
    - core
    - extensions
    - _tests

  # Subtracted from each file's directory depth below root.
  depthOffset: 0

  # Every exported class gains an empty stub for each of these methods,
  # unless it already declares one.
  injectMethods: true
  classPrefix: "export class"
  methods:
    - defaults
    - mutabilities
  indent: "    "

# COUNT
#
# Settings for 'aftercare count'.
count:
  extension: ".ts"
  workers: 0 # 0 means one worker per CPU
`

type RewriteConfig struct {
	Extension     string   `yaml:"extension"`
	Aliases       []string `yaml:"aliases"`
	DepthOffset   int      `yaml:"depthOffset"`
	ImportKeyword string   `yaml:"importKeyword"`
	ClassPrefix   string   `yaml:"classPrefix"`
	Methods       []string `yaml:"methods"`
	Indent        string   `yaml:"indent"`
	InjectMethods bool     `yaml:"injectMethods"`
}

type CountConfig struct {
	Extension string `yaml:"extension"`
	Workers   int    `yaml:"workers"`
}

type Config struct {
	Root    string        `yaml:"root"`
	LogFile string        `yaml:"logFile"`
	Rewrite RewriteConfig `yaml:"rewrite"`
	Count   CountConfig   `yaml:"count"`
	Path    string        `yaml:"-"` // the file this config was read from, if any
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	return &Config{
		Rewrite: RewriteConfig{
			Extension:     ".js",
			Aliases:       []string{"core", "extensions", "_tests"},
			ImportKeyword: "import",
			ClassPrefix:   "export class",
			Methods:       []string{"defaults", "mutabilities"},
			Indent:        "    ",
			InjectMethods: true,
		},
		Count: CountConfig{
			Extension: ".ts",
		},
	}
}

// Load finds and reads the configuration for the project directory dir. The
// file named by explicit is used if set, then the file named by
// AFTERCARE_CONFIG, then dir/.aftercare.yml. When none is present the
// defaults apply. Root defaults to dir.
func Load(dir, explicit string, env fs.EnvProvider, v validator.Validator) (*Config, error) {
	path := explicit
	if path == "" && env != nil {
		path = env.Get(ConfigEnvVar)
	}

	var cfg *Config
	if path == "" {
		candidate := filepath.Join(dir, ConfigFile)
		_, err := os.Stat(candidate)
		switch {
		case err == nil:
			path = candidate
		case os.IsNotExist(err):
			cfg = Default()
		default:
			return nil, err
		}
	}

	if cfg == nil {
		var err error
		if cfg, err = New(path, v); err != nil {
			return nil, err
		}
	}

	if cfg.Root == "" {
		cfg.Root = dir
	}
	return cfg, nil
}

// New reads the config file at path, checks it against the configuration
// schema and applies it over the defaults.
func New(path string, v validator.Validator) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &MissingConfigError{Path: path}
	}
	if err != nil {
		return nil, err
	}

	var raw interface{}
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	doc, err := validator.ToDocument(raw)
	if err != nil {
		return nil, &InvalidConfigError{Path: path, Wrapped: err}
	}
	if vErr := v.Validate(doc); vErr != nil {
		return nil, &InvalidConfigError{Path: path, Wrapped: vErr}
	}

	config := Default()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, &InvalidYAMLError{Path: path, Wrapped: err}
	}
	config.Path = path

	if config.Root != "" && !filepath.IsAbs(config.Root) {
		config.Root = filepath.Join(filepath.Dir(path), config.Root)
	}

	if vErr := config.Validate(); vErr != nil {
		return nil, vErr
	}
	return config, nil
}

// Validate checks the values the schema cannot express.
func (c *Config) Validate() error {
	if err := ValidateExtension("rewrite.extension", c.Rewrite.Extension); err != nil {
		return err
	}
	if err := ValidateExtension("count.extension", c.Count.Extension); err != nil {
		return err
	}
	if err := ValidateAliases(c.Rewrite.Aliases); err != nil {
		return err
	}
	if c.Rewrite.ImportKeyword == "" {
		return &MissingPropertyError{Property: "rewrite.importKeyword"}
	}
	if c.Rewrite.ClassPrefix == "" {
		return &MissingPropertyError{Property: "rewrite.classPrefix"}
	}
	return nil
}

// ValidateExtension checks that ext is a usable file extension such as ".js".
func ValidateExtension(prop, ext string) error {
	if len(ext) < 2 || ext[0] != '.' || strings.ContainsAny(ext, `/\'" `) {
		return &InvalidExtensionError{Property: prop, Value: ext}
	}
	return nil
}

// ValidateAliases checks that every alias names a directory and appears once.
func ValidateAliases(aliases []string) error {
	seen := make(map[string]bool, len(aliases))
	for _, a := range aliases {
		switch {
		case a == "":
			return &InvalidAliasError{Alias: a, Reason: "must not be empty"}
		case strings.HasPrefix(a, ".") || strings.HasPrefix(a, "/"):
			return &InvalidAliasError{Alias: a, Reason: "must not be a relative or absolute path"}
		case strings.HasSuffix(a, "/"):
			return &InvalidAliasError{Alias: a, Reason: "must not end with '/'"}
		case strings.ContainsAny(a, `'"\ `):
			return &InvalidAliasError{Alias: a, Reason: "must not contain quotes, backslashes or spaces"}
		case seen[a]:
			return &InvalidAliasError{Alias: a, Reason: "is listed more than once"}
		}
		seen[a] = true
	}
	return nil
}
