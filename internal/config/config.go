package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is used when DIRECTUS_CONFIG is unset.
const DefaultPath = "config/engine.toml"

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Scene     SceneConfig     `toml:"scene"`
	Renderer  RendererConfig  `toml:"renderer"`
	Resources ResourcesConfig `toml:"resources"`
	Workers   WorkersConfig   `toml:"workers"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

type EngineConfig struct {
	Name      string        `toml:"name"`
	TickRate  time.Duration `toml:"tick_rate"`
	StartTime int64         // set at boot, not from config
}

type SceneConfig struct {
	StartupFile      string `toml:"startup_file"`      // loaded at boot when set
	AutosaveFile     string `toml:"autosave_file"`     // empty disables autosave
	AutosaveInterval int    `toml:"autosave_interval"` // ticks between autosaves
	SaveOnExit       bool   `toml:"save_on_exit"`
	CreateDefault    bool   `toml:"create_default"` // camera, skybox and light when nothing is loaded
}

type RendererConfig struct {
	Width         int `toml:"width"`
	Height        int `toml:"height"`
	MaxResolution int `toml:"max_resolution"`
}

type ResourcesConfig struct {
	Directory       string `toml:"directory"`
	ScriptDirectory string `toml:"script_directory"`
}

type WorkersConfig struct {
	Count     int `toml:"count"`
	QueueSize int `toml:"queue_size"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the scene index
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Path returns the config file location from DIRECTUS_CONFIG, or DefaultPath.
func Path() string {
	if p := os.Getenv("DIRECTUS_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load decodes path over the defaults. A missing file at DefaultPath yields
// the defaults; any other missing file is an error.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Engine.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be positive, got %s", c.Engine.TickRate)
	}
	if c.Scene.AutosaveFile != "" && c.Scene.AutosaveInterval <= 0 {
		return fmt.Errorf("scene.autosave_interval must be positive when autosave_file is set")
	}
	if c.Renderer.Width <= 0 || c.Renderer.Height <= 0 {
		return fmt.Errorf("renderer resolution must be positive, got %dx%d", c.Renderer.Width, c.Renderer.Height)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:     "Directus",
			TickRate: 16 * time.Millisecond,
		},
		Scene: SceneConfig{
			AutosaveInterval: 3600,
			SaveOnExit:       false,
			CreateDefault:    true,
		},
		Renderer: RendererConfig{
			Width:         1920,
			Height:        1080,
			MaxResolution: 16384,
		},
		Resources: ResourcesConfig{
			Directory:       "Assets",
			ScriptDirectory: "Assets/Scripts",
		},
		Workers: WorkersConfig{
			Count:     4,
			QueueSize: 64,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
