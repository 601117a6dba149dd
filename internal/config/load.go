package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded when present; a missing file is not an error.
const DefaultEnvFile = ".env"

// Options selects where Load reads from.
type Options struct {
	// Path is an optional YAML/JSON config file.
	Path string
	// EnvFile is a dotenv file. Empty means DefaultEnvFile (optional);
	// an explicitly named file must exist.
	EnvFile string
	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
	// SkipValidate returns the merged config without validating it.
	SkipValidate bool
}

// Load merges defaults, the config file, the dotenv file and the environment,
// then validates the result.
func Load(opt Options) (*Config, error) {
	cfg := &Config{}
	if p := strings.TrimSpace(opt.Path); p != "" {
		parsed, err := ParseFile(p)
		if err != nil {
			return nil, err
		}
		cfg = parsed
	}

	if err := loadEnvFile(opt.EnvFile); err != nil {
		return nil, err
	}

	lookup := opt.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	fillDefaults(cfg)
	if opt.SkipValidate {
		return cfg, nil
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseFile reads a config file strictly: unknown keys and trailing data are errors.
func ParseFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, b)
}

// Parse decodes raw config bytes. path is only used to pick the format.
func Parse(path string, data []byte) (*Config, error) {
	jb, err := toJSON(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%s: invalid config: trailing data", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// loadEnvFile exports variables from a dotenv file without overriding the
// real environment.
func loadEnvFile(name string) error {
	explicit := strings.TrimSpace(name) != ""
	if !explicit {
		name = DefaultEnvFile
	}
	err := godotenv.Load(name)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", name, err)
}
