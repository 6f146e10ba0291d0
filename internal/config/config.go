package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Data   DataConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DataConfig locates the JSONC catalogs the engine loads. Dir is the base
// data directory; the file names are resolved relative to it.
type DataConfig struct {
	Dir             string
	InitiativesFile string
	SensorsFile     string
	CalendarFile    string
	LoadOnStart     bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables. It uses viper to read
// values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", "data/json")
	v.SetDefault("INITIATIVES_FILE", "initiatives_metadata.jsonc")
	v.SetDefault("SENSORS_FILE", "sensors_metadata.jsonc")
	v.SetDefault("CALENDAR_FILE", "conab_crop_calendar.jsonc")
	v.SetDefault("LOAD_ON_START", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:8501")

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Data: DataConfig{
			Dir:             v.GetString("DATA_DIR"),
			InitiativesFile: v.GetString("INITIATIVES_FILE"),
			SensorsFile:     v.GetString("SENSORS_FILE"),
			CalendarFile:    v.GetString("CALENDAR_FILE"),
			LoadOnStart:     v.GetBool("LOAD_ON_START"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.Data.InitiativesFile == "" {
		return fmt.Errorf("INITIATIVES_FILE is required")
	}
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}
	return nil
}

// InitiativesPath is the full path to the initiative catalog.
func (c *DataConfig) InitiativesPath() string {
	return filepath.Join(c.Dir, c.InitiativesFile)
}

// SensorsPath is the full path to the sensor catalog, or empty when no
// sensor catalog is configured.
func (c *DataConfig) SensorsPath() string {
	if c.SensorsFile == "" {
		return ""
	}
	return filepath.Join(c.Dir, c.SensorsFile)
}

// CalendarPath is the full path to the crop calendar, or empty when no
// calendar is configured.
func (c *DataConfig) CalendarPath() string {
	if c.CalendarFile == "" {
		return ""
	}
	return filepath.Join(c.Dir, c.CalendarFile)
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
