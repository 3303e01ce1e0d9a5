package config

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=1,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Segmentation SegmentationConfig `mapstructure:"segmentation"`
	Extraction   ExtractionConfig   `mapstructure:"extraction"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Server       ServerConfig       `mapstructure:"server"`
	Export       ExportConfig       `mapstructure:"export"`
}

// SegmentationConfig bounds passage lengths, counted in characters.
type SegmentationConfig struct {
	MinLength int `mapstructure:"min_length" validate:"gte=1"`
	MaxLength int `mapstructure:"max_length" validate:"gtfield=MinLength"`
}

// ExtractionConfig controls how text is read out of uploaded documents.
// When ServiceURL is empty, PDF text is extracted locally.
type ExtractionConfig struct {
	MaxControlRatio float64 `mapstructure:"max_control_ratio" validate:"gte=0,lte=1"`
	ServiceURL      string  `mapstructure:"service_url" validate:"omitempty,url"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"gte=1"`
}

const (
	StorageDriverYAML  = "yaml"
	StorageDriverMySQL = "mysql"
)

type StorageConfig struct {
	Driver    string `mapstructure:"driver" validate:"oneof=yaml mysql"`
	Directory string `mapstructure:"directory" validate:"required_if=Driver yaml"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ExportConfig struct {
	Directory string `mapstructure:"directory"`
	// Template is an optional text/template file for the review sheet.
	Template string `mapstructure:"template" validate:"omitempty,file"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/palimpseste")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

// Load reads the configuration file, if any, on top of the defaults.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("segmentation.min_length", 300)
	v.SetDefault("segmentation.max_length", 1200)
	v.SetDefault("extraction.max_control_ratio", 0.2)
	v.SetDefault("extraction.service_url", "")
	v.SetDefault("extraction.timeout_seconds", 30)
	v.SetDefault("storage.driver", StorageDriverYAML)
	v.SetDefault("storage.directory", "tracks")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "palimpseste")
	v.SetDefault("database.username", "user")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("export.directory", "exports")
	v.SetDefault("export.template", "")

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("extraction.service_url", "PALIMPSESTE_EXTRACTION_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind PALIMPSESTE_EXTRACTION_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
