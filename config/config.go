package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Tipos de fuente de snapshot.
const (
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceFile     = "file"
	SourceHTTP     = "http"
)

// Config es la configuración completa del validador.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Storage StorageConfig `yaml:"storage"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// SourceConfig indica de dónde se lee el snapshot de colecciones.
type SourceConfig struct {
	Kind       string  `yaml:"kind"`         // sqlite | postgres | file | http
	DSN        string  `yaml:"dsn"`          // sqlite: ruta al archivo; postgres: connection string
	Dir        string  `yaml:"dir"`          // file: directorio con <colección>.json
	BaseURL    string  `yaml:"base_url"`     // http: servicio de export
	Token      string  `yaml:"token"`        // http: bearer token, mejor desde .env
	RatePerSec float64 `yaml:"rate_per_sec"` // http: requests por segundo
}

// StorageConfig controla el historial de reportes.
type StorageConfig struct {
	SaveReports bool   `yaml:"save_reports"`
	Driver      string `yaml:"driver"` // sqlite | postgres
	DSN         string `yaml:"dsn"`
}

// OutputConfig controla cómo se presenta el reporte.
type OutputConfig struct {
	Format string `yaml:"format"` // text | json
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Las variables de entorno sobreescriben los valores del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate comprueba que la fuente elegida tenga lo que necesita.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceSQLite, SourcePostgres:
		if c.Source.DSN == "" {
			return fmt.Errorf("source.dsn is required for kind %q", c.Source.Kind)
		}
	case SourceFile:
		if c.Source.Dir == "" {
			return fmt.Errorf("source.dir is required for kind %q", c.Source.Kind)
		}
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("source.base_url is required for kind %q", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}

	if c.Storage.Driver != SourceSQLite && c.Storage.Driver != SourcePostgres {
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Output.Format != "text" && c.Output.Format != "json" {
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SOURCE_KIND"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("SOURCE_DSN"); v != "" {
		cfg.Source.DSN = v
	}
	if v := os.Getenv("SOURCE_DIR"); v != "" {
		cfg.Source.Dir = v
	}
	if v := os.Getenv("SOURCE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("SOURCE_TOKEN"); v != "" {
		cfg.Source.Token = v
	}
	if v := os.Getenv("SOURCE_RATE_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Source.RatePerSec = f
		}
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = SourceSQLite
	}
	if cfg.Source.Kind == SourceSQLite && cfg.Source.DSN == "" {
		cfg.Source.DSN = "accuracybot.db"
	}
	if cfg.Source.RatePerSec <= 0 {
		cfg.Source.RatePerSec = 5
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = SourceSQLite
	}
	if cfg.Storage.DSN == "" {
		// Mismo archivo que el snapshot cuando ambos son SQLite
		if cfg.Source.Kind == cfg.Storage.Driver && cfg.Source.DSN != "" {
			cfg.Storage.DSN = cfg.Source.DSN
		} else {
			cfg.Storage.DSN = "accuracybot.db"
		}
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
