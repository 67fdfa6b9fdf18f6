package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	WindowWidth  = 320
	WindowHeight = 400

	// Heart widget placement inside the window
	HeartX      = 20
	HeartY      = 10
	HeartWidth  = 280
	HeartHeight = 230

	// Long dialogue box below the heart
	DialogueX      = 10
	DialogueY      = 250
	DialogueWidth  = 300
	DialogueHeight = 120

	ErrorHeartColor = "#AA0000"
	DefaultText     = "Ruby..."
	ThinkingText    = "..."
	ErrorText       = "Error!"
	SleepingText    = "Zzz..."

	DefaultPulseHz = 1.0
	ErrorPulseHz   = 0.5

	OutputHideTimeout = 12 * time.Second
	ErrorHideTimeout  = 20 * time.Second
	ClickTextRestore  = 400 * time.Millisecond

	MaxHistoryExchanges = 6
	ShutdownGrace       = 2 * time.Second
)

// QuickResponses are shown on the heart for a moment after a click.
var QuickResponses = []string{"Ouch!", "Hehe!", "Eep!", "Hmm?", ":)"}

var ErrInvalidConfig = errors.New("invalid config")

// Config is the user-editable part of the configuration, loaded from YAML.
type Config struct {
	LLM   LLMConfig   `yaml:"llm"`
	Sound SoundConfig `yaml:"sound"`
	Idle  IdleConfig  `yaml:"idle"`

	// FontPath points at a TTF/OTF used for heart and dialogue text.
	// Empty means the built-in Go font (no CJK glyphs).
	FontPath string `yaml:"fontPath"`
}

type LLMConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"baseURL"`
	Model   string        `yaml:"model"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
	Workers int           `yaml:"workers"`
}

type SoundConfig struct {
	Dir   string            `yaml:"dir"`
	Files map[string]string `yaml:"files"`
}

type IdleConfig struct {
	MinDelay time.Duration `yaml:"minDelay"`
	MaxDelay time.Duration `yaml:"maxDelay"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Enabled: true,
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Model:   "gemini-2.0-flash-lite",
			Timeout: 30 * time.Second,
			Workers: 2,
		},
		Sound: SoundConfig{
			Dir: "resources/sounds",
			Files: map[string]string{
				"poke":            "poke.wav",
				"pop":             "pop.wav",
				"spin":            "swoosh.wav",
				"jiggle":          "jiggle.wav",
				"heartbeat_soft":  "heartbeat_soft.wav",
				"heartbeat_fast":  "heartbeat_fast.wav",
				"message_receive": "message.wav",
				"ui_click":        "click.wav",
			},
		},
		Idle: IdleConfig{
			MinDelay: 8 * time.Second,
			MaxDelay: 15 * time.Second,
		},
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
// Environment overrides (and a .env file, if present) are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err == nil {
		log.Println("[Config] Loaded environment variables from .env file")
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("HEART_API_KEY"); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("HEART_MODEL"); model != "" {
		c.LLM.Model = model
	}
}

// Validate checks ranges that would otherwise break the scheduler or client.
func (c *Config) Validate() error {
	if c.Idle.MinDelay <= 0 || c.Idle.MaxDelay < c.Idle.MinDelay {
		return fmt.Errorf("%w: idle delay range [%v, %v]", ErrInvalidConfig, c.Idle.MinDelay, c.Idle.MaxDelay)
	}
	if c.LLM.Workers < 1 {
		return fmt.Errorf("%w: llm.workers must be at least 1, got %d", ErrInvalidConfig, c.LLM.Workers)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("%w: negative llm.timeout", ErrInvalidConfig)
	}
	return nil
}
