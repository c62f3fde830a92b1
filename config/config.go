package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"riskgate/ml"
)

// EnvPath overrides the default config location.
const EnvPath = "RISKGATE_CONFIG"

const DefaultPath = "config.yaml"

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Log LogConfig `yaml:"log"`
	ML  struct {
		ModelType    string `yaml:"model_type"`
		ArtifactsDir string `yaml:"artifacts_dir"`
		BundlePath   string `yaml:"bundle_path"`
		CacheSize    int    `yaml:"cache_size"`
		Watch        bool   `yaml:"watch"`
	} `yaml:"ml"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// ResolvePath picks the config file: explicit flag, then $RISKGATE_CONFIG,
// then ./config.yaml.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads the YAML file at path. A missing file at the default location
// is not an error: the built-in defaults are used instead.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 20
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.ML.ModelType == "" {
		c.ML.ModelType = ml.ModelLogisticRegression
	}
	if c.ML.ArtifactsDir == "" && c.ML.BundlePath == "" {
		c.ML.ArtifactsDir = "models"
	}
}

func (c *Config) Validate() error {
	if c.Http.Port < 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Log.Output != "stdout" && c.Log.Output != "stderr" {
		return fmt.Errorf("log.output %q must be stdout or stderr", c.Log.Output)
	}
	if c.ML.CacheSize < 0 {
		return errors.New("ml.cache_size must not be negative")
	}
	if c.ML.ArtifactsDir != "" && c.ML.BundlePath != "" {
		return errors.New("set only one of ml.artifacts_dir and ml.bundle_path")
	}
	if _, err := ml.NewModel(c.ML.ModelType); err != nil {
		return fmt.Errorf("ml.model_type: %w", err)
	}
	return nil
}
