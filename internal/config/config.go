package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/hauntess/server/internal/schema"
)

// DefaultPath is used when HAUNTESS_CONFIG is unset.
const DefaultPath = "config/server.toml"

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Haunt     HauntConfig     `toml:"haunt"`
	Console   ConsoleConfig   `toml:"console"`
	Content   ContentConfig   `toml:"content"`
	Scripting ScriptingConfig `toml:"scripting"`
	Journal   JournalConfig   `toml:"journal"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name      string        `toml:"name" env:"HAUNTESS_SERVER_NAME"`
	TickRate  time.Duration `toml:"tick_rate" env:"HAUNTESS_TICK_RATE"`
	StartTime int64         // set at boot, not from config
}

type HauntConfig struct {
	MasterName  string        `toml:"master_name" env:"HAUNTESS_MASTER_NAME"`
	ReloadDelay time.Duration `toml:"reload_delay" env:"HAUNTESS_RELOAD_DELAY"`
	SpawnDelay  time.Duration `toml:"spawn_delay" env:"HAUNTESS_SPAWN_DELAY"`
	IncludeBots bool          `toml:"include_bots" env:"HAUNTESS_INCLUDE_BOTS"`
	Visibility  float32       `toml:"visibility_multiplier" env:"HAUNTESS_VISIBILITY_MULTIPLIER"`
	Fog         FogConfig     `toml:"fog"`
}

// FogConfig is the haunted fog preset before scripting overrides.
type FogConfig struct {
	Color      [4]uint8 `toml:"color"`
	Start      float32  `toml:"start" env:"HAUNTESS_FOG_START"`
	End        float32  `toml:"end" env:"HAUNTESS_FOG_END"`
	MaxDensity float32  `toml:"max_density" env:"HAUNTESS_FOG_MAX_DENSITY"`
	Exponent   float32  `toml:"exponent" env:"HAUNTESS_FOG_EXPONENT"`
}

// Params converts the preset to an enabled fogparams_t value.
func (f FogConfig) Params() schema.FogParams {
	return schema.FogParams{
		Enable:       true,
		ColorPrimary: schema.Color{R: f.Color[0], G: f.Color[1], B: f.Color[2], A: f.Color[3]},
		Start:        f.Start,
		End:          f.End,
		MaxDensity:   f.MaxDensity,
		Exponent:     f.Exponent,
	}
}

type ConsoleConfig struct {
	BindAddress     string        `toml:"bind_address" env:"HAUNTESS_CONSOLE_ADDR"`
	Stdin           bool          `toml:"stdin" env:"HAUNTESS_CONSOLE_STDIN"`
	PasswordHash    string        `toml:"password_hash" env:"HAUNTESS_CONSOLE_PASSWORD_HASH"` // bcrypt; empty leaves TCP consoles open
	InQueueSize     int           `toml:"in_queue_size"`
	OutQueueSize    int           `toml:"out_queue_size"`
	MaxLinesPerTick int           `toml:"max_lines_per_tick"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
}

type ContentConfig struct {
	MapsFile string   `toml:"maps_file" env:"HAUNTESS_MAPS_FILE"`
	StartMap string   `toml:"start_map" env:"HAUNTESS_START_MAP"`
	Bots     []string `toml:"bots" env:"HAUNTESS_BOTS" envSeparator:","` // bot names connected at boot
}

type ScriptingConfig struct {
	Dir string `toml:"dir" env:"HAUNTESS_SCRIPTS_DIR"`
}

// JournalConfig configures the optional activation journal. Empty DSN disables it.
type JournalConfig struct {
	DSN             string        `toml:"dsn" env:"HAUNTESS_JOURNAL_DSN"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	QueueSize       int           `toml:"queue_size"`
}

type LoggingConfig struct {
	Level  string `toml:"level" env:"HAUNTESS_LOG_LEVEL"`
	Format string `toml:"format" env:"HAUNTESS_LOG_FORMAT"` // "json" or "console"
}

// Path returns the config file path from HAUNTESS_CONFIG or DefaultPath.
func Path() string {
	if p := os.Getenv("HAUNTESS_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the TOML file at path over the defaults, then overlays
// HAUNTESS_* environment variables and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(names, ", "))
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("server.tick_rate must be positive, got %s", c.Server.TickRate))
	}
	if c.Haunt.MasterName == "" {
		errs = append(errs, errors.New("haunt.master_name must not be empty"))
	}
	if c.Haunt.ReloadDelay < 0 {
		errs = append(errs, fmt.Errorf("haunt.reload_delay must not be negative, got %s", c.Haunt.ReloadDelay))
	}
	if c.Haunt.SpawnDelay < 0 {
		errs = append(errs, fmt.Errorf("haunt.spawn_delay must not be negative, got %s", c.Haunt.SpawnDelay))
	}
	if c.Haunt.Visibility < 0 {
		errs = append(errs, fmt.Errorf("haunt.visibility_multiplier must not be negative, got %g", c.Haunt.Visibility))
	}
	fog := c.Haunt.Fog
	if fog.MaxDensity < 0 || fog.MaxDensity > 1 {
		errs = append(errs, fmt.Errorf("haunt.fog.max_density must be within [0,1], got %g", fog.MaxDensity))
	}
	if fog.Start < 0 || fog.End < 0 {
		errs = append(errs, fmt.Errorf("haunt.fog distances must not be negative, got start=%g end=%g", fog.Start, fog.End))
	}
	if c.Console.MaxLinesPerTick <= 0 {
		errs = append(errs, fmt.Errorf("console.max_lines_per_tick must be positive, got %d", c.Console.MaxLinesPerTick))
	}
	if c.Journal.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("journal.queue_size must be positive, got %d", c.Journal.QueueSize))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "Hauntess",
			TickRate: 64 * time.Millisecond,
		},
		Haunt: HauntConfig{
			MasterName:  "Hauntess_Master_Fog",
			ReloadDelay: 2 * time.Second,
			SpawnDelay:  300 * time.Millisecond,
			Visibility:  1.0,
			Fog: FogConfig{
				Color:      [4]uint8{2, 2, 4, 255},
				Start:      0,
				End:        350,
				MaxDensity: 1.0,
				Exponent:   1.5,
			},
		},
		Console: ConsoleConfig{
			BindAddress:     "127.0.0.1:27020",
			Stdin:           true,
			InQueueSize:     64,
			OutQueueSize:    256,
			MaxLinesPerTick: 16,
			WriteTimeout:    10 * time.Second,
			ReadTimeout:     10 * time.Minute,
		},
		Content: ContentConfig{
			MapsFile: "data/yaml/maps.yaml",
			StartMap: "de_fog",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Journal: JournalConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			QueueSize:       128,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
