package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"gopkg.in/yaml.v3"

	"github.com/luno/openclaw/adapters/filestore"
)

var errBadConfig = errors.New("invalid manager config", j.C("ERR_c41e8d02b9a7f365"))

type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	HTTP    HTTPConfig    `yaml:"http"`
	Gateway GatewayConfig `yaml:"gateway"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=file sqlite mysql redis"`
	Path   string `yaml:"path" validate:"required_if=Driver file,required_if=Driver sqlite"`
	DSN    string `yaml:"dsn" validate:"required_if=Driver mysql"`
	Addr   string `yaml:"addr" validate:"required_if=Driver redis"`
}

type LogConfig struct {
	Debug  bool   `yaml:"debug"`
	Format string `yaml:"format" validate:"required,oneof=slog jettison"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" validate:"omitempty,dive,required"`
	Topic   string   `yaml:"topic" validate:"required_with=Brokers"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type GatewayConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

var validate = validator.New()

func defaultConfig() (Config, error) {
	path, err := filestore.DefaultPath()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Store:   StoreConfig{Driver: "file", Path: path},
		Log:     LogConfig{Format: "slog"},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Gateway: GatewayConfig{Timeout: 10 * time.Second},
	}, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}

	return filepath.Join(home, ".openclaw-manager", "config.yaml")
}

// loadConfig reads the YAML file at path over the defaults. A missing file leaves
// the defaults in place.
func loadConfig(path string) (Config, error) {
	cfg, err := defaultConfig()
	if err != nil {
		return Config{}, err
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return Config{}, errors.Wrap(err, "read config", j.MKV{"path": path})
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrap(errBadConfig, err.Error(), j.MKV{"path": path})
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, errors.Wrap(err, "", j.MKV{"path": path})
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "validate config")
	}

	var msgs []string
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return errors.Wrap(errBadConfig, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is "Config.Store.Driver"; the yaml keys are the lower cased path.
	field := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))

	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return field + " is required"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "gt":
		return field + " must be positive"
	default:
		return field + " is invalid"
	}
}
