package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mgpai22/cuestrip/internal/timeline"
)

const envPrefix = "CUESTRIP"

// Config holds the user defaults for every command
type Config struct {
	Import      ImportConfig    `mapstructure:"import"`
	FPS         FPSConfig       `mapstructure:"fps"`
	Style       timeline.Style  `mapstructure:"style"`
	Translate   TranslateConfig `mapstructure:"translate"`
	FFmpegPath  string          `mapstructure:"ffmpeg_path"`
	FFprobePath string          `mapstructure:"ffprobe_path"`
}

// ImportConfig holds where imported cues land
type ImportConfig struct {
	StartFrame int `mapstructure:"start_frame"`
	Channel    int `mapstructure:"channel"`
}

// FPSConfig selects the frame rate used by import and export
type FPSConfig struct {
	UseSource bool    `mapstructure:"use_source"`
	Custom    float64 `mapstructure:"custom"`
}

// TranslateConfig holds the LLM translation defaults
type TranslateConfig struct {
	Provider    string `mapstructure:"provider"`
	Model       string `mapstructure:"model"`
	Concurrency int    `mapstructure:"concurrency"`
	BatchSize   int    `mapstructure:"batch_size"`
}

// flag name -> config key
var flagBindings = map[string]string{
	"start-frame":    "import.start_frame",
	"use-source-fps": "fps.use_source",
	"fps":            "fps.custom",
	"provider":       "translate.provider",
	"model":          "translate.model",
	"concurrency":    "translate.concurrency",
	"batch-size":     "translate.batch_size",
	"ffmpeg-path":    "ffmpeg_path",
	"ffprobe-path":   "ffprobe_path",
}

// DefaultPath is $XDG_CONFIG_HOME/cuestrip/config.yaml or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cuestrip", "config.yaml")
}

// Load reads configuration from file, environment and flags.
//
// Precedence is flag > env > file > default. An explicit configPath must
// exist; the default path is optional. Any flag in flags whose name appears
// in the binding table overrides its key when set on the command line.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Import.Channel < timeline.MinChannel || c.Import.Channel > timeline.MaxChannel {
		return fmt.Errorf(
			"import.channel must be between %d and %d, got %d",
			timeline.MinChannel,
			timeline.MaxChannel,
			c.Import.Channel,
		)
	}
	if c.Translate.Concurrency <= 0 {
		return fmt.Errorf("translate.concurrency must be positive, got %d", c.Translate.Concurrency)
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("translate.batch_size must be positive, got %d", c.Translate.BatchSize)
	}
	return nil
}

func readConfigFile(v *viper.Viper, configPath string) error {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath()
		if configPath == "" {
			return nil
		}
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Import defaults
	v.SetDefault("import.start_frame", 1)
	v.SetDefault("import.channel", 1)

	// Frame rate defaults
	v.SetDefault("fps.use_source", true)
	v.SetDefault("fps.custom", 24.0)

	// Style defaults
	style := timeline.DefaultStyle()
	v.SetDefault("style.font_size", style.FontSize)
	v.SetDefault("style.location_x", style.LocationX)
	v.SetDefault("style.location_y", style.LocationY)
	v.SetDefault("style.use_shadow", style.UseShadow)
	v.SetDefault("style.shadow_color", style.ShadowColor)
	v.SetDefault("style.blend_type", style.BlendType)
	v.SetDefault("style.align", style.Align)

	// Translate defaults
	v.SetDefault("translate.provider", "gemini")
	v.SetDefault("translate.model", "")
	v.SetDefault("translate.concurrency", 3)
	v.SetDefault("translate.batch_size", 50)

	// Binary overrides, empty means search PATH
	v.SetDefault("ffmpeg_path", "")
	v.SetDefault("ffprobe_path", "")
}
