package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Simulation  SimulationConfig  `mapstructure:"simulation"`
	Server      ServerConfig      `mapstructure:"server"`
	UI          UIConfig          `mapstructure:"ui"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// GameConfig holds match configuration
type GameConfig struct {
	Map    MapConfig    `mapstructure:"map"`
	Shroud ShroudConfig `mapstructure:"shroud"`
}

// MapConfig holds terrain generation settings
type MapConfig struct {
	Width       int           `mapstructure:"width"`
	Height      int           `mapstructure:"height"`
	MaxHeight   int           `mapstructure:"max_height"`
	BoundsInset int           `mapstructure:"bounds_inset"`
	Plateaus    PlateauConfig `mapstructure:"plateaus"`
}

// PlateauConfig holds raised terrain vein settings
type PlateauConfig struct {
	Ratio          int     `mapstructure:"ratio"`
	MinLength      int     `mapstructure:"min_length"`
	MaxLengthRatio float64 `mapstructure:"max_length_ratio"`
}

// ShroudConfig holds the lobby options and vision defaults
type ShroudConfig struct {
	FogEnabled     bool `mapstructure:"fog_enabled"`
	ExploreMap     bool `mapstructure:"explore_map"`
	Disabled       bool `mapstructure:"disabled"`
	VisionRange    int  `mapstructure:"vision_range"`
	MaxHeightDelta int  `mapstructure:"max_height_delta"`
	ShareAllied    bool `mapstructure:"share_allied"`
}

// SimulationConfig holds headless simulation settings
type SimulationConfig struct {
	Players        int   `mapstructure:"players"`
	UnitsPerPlayer int   `mapstructure:"units_per_player"`
	Steps          int   `mapstructure:"steps"`
	Seed           int64 `mapstructure:"seed"`
	StepIntervalMS int   `mapstructure:"step_interval_ms"`
	PrintEvery     int   `mapstructure:"print_every"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Inspect InspectServerConfig `mapstructure:"inspect"`
}

// InspectServerConfig holds shroud inspection gRPC server configuration
type InspectServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	// MonitorInterval is seconds between simulation metric samples
	MonitorInterval int `mapstructure:"monitor_interval"`
}

// UIConfig holds debug viewer configuration
type UIConfig struct {
	Window WindowConfig `mapstructure:"window"`
	View   ViewConfig   `mapstructure:"view"`
	Colors ColorsConfig `mapstructure:"colors"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// ViewConfig holds viewer behaviour
type ViewConfig struct {
	CellSize     int `mapstructure:"cell_size"`
	Player       int `mapstructure:"player"`
	StepInterval int `mapstructure:"step_interval"`
}

// ColorsConfig holds viewer colours
type ColorsConfig struct {
	Shroud  [4]int `mapstructure:"shroud"`
	Fog     [4]int `mapstructure:"fog"`
	Terrain [3]int `mapstructure:"terrain"`
	Unit    [3]int `mapstructure:"unit"`
}

// DevelopmentConfig holds development/debug settings
type DevelopmentConfig struct {
	VerboseLogging bool `mapstructure:"verbose_logging"`
	LogEvents      bool `mapstructure:"log_events"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Map defaults
	v.SetDefault("game.map.width", 32)
	v.SetDefault("game.map.height", 24)
	v.SetDefault("game.map.max_height", 3)
	v.SetDefault("game.map.bounds_inset", 1)
	v.SetDefault("game.map.plateaus.ratio", 40)
	v.SetDefault("game.map.plateaus.min_length", 3)
	v.SetDefault("game.map.plateaus.max_length_ratio", 0.25)

	// Shroud defaults
	v.SetDefault("game.shroud.fog_enabled", true)
	v.SetDefault("game.shroud.explore_map", false)
	v.SetDefault("game.shroud.disabled", false)
	v.SetDefault("game.shroud.vision_range", 4)
	v.SetDefault("game.shroud.max_height_delta", -1)
	v.SetDefault("game.shroud.share_allied", true)

	// Simulation defaults
	v.SetDefault("simulation.players", 2)
	v.SetDefault("simulation.units_per_player", 4)
	v.SetDefault("simulation.steps", 50)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.step_interval_ms", 40)
	v.SetDefault("simulation.print_every", 10)

	// Inspection server defaults
	v.SetDefault("server.inspect.host", "0.0.0.0")
	v.SetDefault("server.inspect.port", 50061)
	v.SetDefault("server.inspect.log_level", "info")
	v.SetDefault("server.inspect.enable_reflection", true)
	v.SetDefault("server.inspect.graceful_shutdown_delay", 2)
	v.SetDefault("server.inspect.monitor_interval", 30)

	// UI defaults
	v.SetDefault("ui.window.width", 800)
	v.SetDefault("ui.window.height", 600)
	v.SetDefault("ui.window.title", "Shroud Viewer")
	v.SetDefault("ui.view.cell_size", 20)
	v.SetDefault("ui.view.player", 0)
	v.SetDefault("ui.view.step_interval", 10)
	v.SetDefault("ui.colors.shroud", []int{0, 0, 0, 255})
	v.SetDefault("ui.colors.fog", []int{0, 0, 0, 140})
	v.SetDefault("ui.colors.terrain", []int{70, 110, 60})
	v.SetDefault("ui.colors.unit", []int{230, 230, 230})

	// Development defaults
	v.SetDefault("development.verbose_logging", false)
	v.SetDefault("development.log_events", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fogofwar")
	}

	v.SetEnvPrefix("FOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing explicitly requested file falls back to defaults; for the
		// default search path only ConfigFileNotFoundError is tolerated.
		if configPath == "" {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return nil
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. Only the viewer and
// inspection settings are read after startup; match settings are fixed once
// a match begins.
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		v.Unmarshal(cfg)
		if onChange != nil {
			onChange()
		}
	})
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Map
	if c.Game.Map.Width <= 0 || c.Game.Map.Height <= 0 {
		return fmt.Errorf("game.map dimensions must be positive")
	}
	if c.Game.Map.MaxHeight < 0 {
		return fmt.Errorf("game.map.max_height must be non-negative")
	}
	if c.Game.Map.BoundsInset < 0 || 2*c.Game.Map.BoundsInset >= c.Game.Map.Width || 2*c.Game.Map.BoundsInset >= c.Game.Map.Height {
		return fmt.Errorf("game.map.bounds_inset must leave a playable area")
	}
	if c.Game.Map.Plateaus.Ratio <= 0 {
		return fmt.Errorf("game.map.plateaus.ratio must be positive")
	}
	if c.Game.Map.Plateaus.MinLength < 1 {
		return fmt.Errorf("game.map.plateaus.min_length must be at least 1")
	}
	if c.Game.Map.Plateaus.MaxLengthRatio <= 0 || c.Game.Map.Plateaus.MaxLengthRatio > 1 {
		return fmt.Errorf("game.map.plateaus.max_length_ratio must be between 0 and 1")
	}

	// Shroud
	if c.Game.Shroud.VisionRange < 0 {
		return fmt.Errorf("game.shroud.vision_range must be non-negative")
	}
	if c.Game.Shroud.MaxHeightDelta < -1 {
		return fmt.Errorf("game.shroud.max_height_delta must be -1 (disabled) or non-negative")
	}

	// Simulation
	if c.Simulation.Players < 1 {
		return fmt.Errorf("simulation.players must be at least 1")
	}
	if c.Simulation.UnitsPerPlayer < 0 {
		return fmt.Errorf("simulation.units_per_player must be non-negative")
	}
	if c.Simulation.Steps < 0 {
		return fmt.Errorf("simulation.steps must be non-negative")
	}
	if c.Simulation.StepIntervalMS <= 0 {
		return fmt.Errorf("simulation.step_interval_ms must be positive")
	}

	// Server
	if c.Server.Inspect.Port <= 0 || c.Server.Inspect.Port > 65535 {
		return fmt.Errorf("server.inspect.port must be between 1 and 65535")
	}
	if c.Server.Inspect.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.inspect.graceful_shutdown_delay must be non-negative")
	}
	if c.Server.Inspect.MonitorInterval <= 0 {
		return fmt.Errorf("server.inspect.monitor_interval must be positive")
	}

	// UI
	if c.UI.Window.Width <= 0 || c.UI.Window.Height <= 0 {
		return fmt.Errorf("ui.window dimensions must be positive")
	}
	if c.UI.View.CellSize <= 0 {
		return fmt.Errorf("ui.view.cell_size must be positive")
	}
	if c.UI.View.StepInterval <= 0 {
		return fmt.Errorf("ui.view.step_interval must be positive")
	}
	if c.UI.View.Player < 0 || c.UI.View.Player >= c.Simulation.Players {
		return fmt.Errorf("ui.view.player must be a valid player index")
	}

	validateChannels := func(values []int, name string) error {
		for i, v := range values {
			if v < 0 || v > 255 {
				return fmt.Errorf("%s[%d] must be between 0 and 255", name, i)
			}
		}
		return nil
	}
	if err := validateChannels(c.UI.Colors.Shroud[:], "ui.colors.shroud"); err != nil {
		return err
	}
	if err := validateChannels(c.UI.Colors.Fog[:], "ui.colors.fog"); err != nil {
		return err
	}
	if err := validateChannels(c.UI.Colors.Terrain[:], "ui.colors.terrain"); err != nil {
		return err
	}
	if err := validateChannels(c.UI.Colors.Unit[:], "ui.colors.unit"); err != nil {
		return err
	}

	return nil
}
