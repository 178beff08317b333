package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pgcast/pgcast"
	"gopkg.in/yaml.v3"
)

// config is read from the optional YAML file named by -config. Flags given on
// the command line override it.
type config struct {
	Format         string `yaml:"format" validate:"oneof=json yaml msgpack cbor"`
	LogLevel       string `yaml:"log_level" validate:"oneof=trace debug info warn error none"`
	ArrayEscaping  string `yaml:"array_escaping" validate:"oneof=standard double"`
	Numeric        string `yaml:"numeric" validate:"oneof=apd decimal"`
	HstoreOID      uint32 `yaml:"hstore_oid" validate:"required"`
	HstoreArrayOID uint32 `yaml:"hstore_array_oid" validate:"required,nefield=HstoreOID"`
	UseNumber      bool   `yaml:"json_use_number"`
}

func defaultConfig() config {
	return config{
		Format:         "json",
		LogLevel:       "warn",
		ArrayEscaping:  "standard",
		Numeric:        "apd",
		HstoreOID:      16384,
		HstoreArrayOID: 16389,
	}
}

// loadConfig returns the defaults overlaid with the file at path. An empty
// path yields the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func (cfg config) validate() error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (cfg config) logLevel() pgcast.LogLevel {
	level, err := pgcast.LogLevelFromString(cfg.LogLevel)
	if err != nil {
		return pgcast.LogLevelWarn
	}
	return level
}

func (cfg config) escaping() pgcast.ArrayEscaping {
	if cfg.ArrayEscaping == "double" {
		return pgcast.DoubleEscaping
	}
	return pgcast.StandardEscaping
}
