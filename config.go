package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config: a orixe dos datos fíxase ao despregar; o resto son detalles do servidor.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Web      WebConfig      `yaml:"web"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type SourceConfig struct {
	Locator string `yaml:"locator"` // ruta local (.xlsx, .csv, .sqlite) ou URL do ficheiro en bruto
	Timeout string `yaml:"timeout"` // só para URLs
}

type WebConfig struct {
	Addr    string `yaml:"addr"`
	PerPage int    `yaml:"per_page"`
}

type DefaultsConfig struct {
	Crop string `yaml:"crop"`
}

type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

func defaultConfig() Config {
	return Config{
		Source:   SourceConfig{Locator: "datos_2006_2023.xlsx", Timeout: "30s"},
		Web:      WebConfig{Addr: "127.0.0.1:8080", PerPage: 25},
		Defaults: DefaultsConfig{Crop: defaultCrop},
	}
}

// loadConfig: valores por defecto < YAML < variables de contorno.
// path baleiro => sen ficheiro.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("ler configuración: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("configuración %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("CULTIVOS_SOURCE")); v != "" {
		c.Source.Locator = v
	}
	if v := strings.TrimSpace(os.Getenv("CULTIVOS_ADDR")); v != "" {
		c.Web.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("CULTIVOS_DEFAULT_CROP")); v != "" {
		c.Defaults.Crop = v
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.Locator) == "" {
		return errors.New("falta a orixe dos datos (source.locator ou --source)")
	}
	if _, err := c.SourceTimeout(); err != nil {
		return err
	}
	if c.Web.PerPage <= 0 {
		return fmt.Errorf("web.per_page debe ser positivo: %d", c.Web.PerPage)
	}
	return nil
}

func (c Config) SourceTimeout() (time.Duration, error) {
	if c.Source.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil {
		return 0, fmt.Errorf("source.timeout: %w", err)
	}
	return d, nil
}
