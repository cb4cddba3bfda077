package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Path    string `yaml:"path" toml:"path" env:"PORTAL_DB_PATH"`
		SeedDir string `yaml:"seed_dir,omitempty" toml:"seed_dir" env:"PORTAL_SEED_DIR"`
	} `yaml:"database" toml:"database"`

	Server struct {
		Addr          string `yaml:"addr" toml:"addr" env:"PORTAL_ADDR"`
		AllowedOrigin string `yaml:"allowed_origin" toml:"allowed_origin" env:"PORTAL_ALLOWED_ORIGIN"`
	} `yaml:"server" toml:"server"`

	LLM struct {
		Provider      string `yaml:"provider" toml:"provider" env:"PORTAL_LLM_PROVIDER"`
		Model         string `yaml:"model" toml:"model" env:"PORTAL_LLM_MODEL"`
		OllamaBaseURL string `yaml:"ollama_base_url" toml:"ollama_base_url" env:"OLLAMA_HOST"`
		GroqAPIKey    string `yaml:"groq_api_key,omitempty" toml:"groq_api_key" env:"GROQ_API_KEY"`
		GroqURL       string `yaml:"groq_url" toml:"groq_url" env:"GROQ_URL"`
	} `yaml:"llm" toml:"llm"`

	Embedding struct {
		Model   string `yaml:"model" toml:"model" env:"PORTAL_EMBEDDING_MODEL"`
		BaseURL string `yaml:"base_url" toml:"base_url" env:"PORTAL_EMBEDDING_URL"`
	} `yaml:"embedding" toml:"embedding"`

	Listening struct {
		DataDir       string   `yaml:"data_dir" toml:"data_dir" env:"PORTAL_DATA_DIR"`
		Languages     []string `yaml:"languages" toml:"languages" env:"PORTAL_TRANSCRIPT_LANGUAGES"`
		Collection    string   `yaml:"collection" toml:"collection"`
		SearchResults int      `yaml:"search_results" toml:"search_results"`
		Channels      []string `yaml:"channels,omitempty" toml:"channels"`
		ChannelsOPML  string   `yaml:"channels_opml,omitempty" toml:"channels_opml" env:"PORTAL_CHANNELS_OPML"`
		YouTubeURL    string   `yaml:"youtube_url" toml:"youtube_url" env:"PORTAL_YOUTUBE_URL"`
	} `yaml:"listening" toml:"listening"`

	Prompts struct {
		WordGeneration     string `yaml:"word_generation,omitempty" toml:"word_generation"`
		QuestionExtraction string `yaml:"question_extraction,omitempty" toml:"question_extraction"`
		QuestionGeneration string `yaml:"question_generation,omitempty" toml:"question_generation"`
	} `yaml:"prompts,omitempty" toml:"prompts"`

	Temperatures struct {
		WordGeneration     float64 `yaml:"word_generation" toml:"word_generation"`
		QuestionExtraction float64 `yaml:"question_extraction" toml:"question_extraction"`
		QuestionGeneration float64 `yaml:"question_generation" toml:"question_generation"`
	} `yaml:"temperatures,omitempty" toml:"temperatures"`

	Daemon struct {
		Interval     string `yaml:"interval" toml:"interval" env:"PORTAL_DAEMON_INTERVAL"`
		ReminderDays int    `yaml:"reminder_days" toml:"reminder_days"`
	} `yaml:"daemon" toml:"daemon"`

	Notify struct {
		Enabled bool   `yaml:"enabled" toml:"enabled" env:"PORTAL_NOTIFY"`
		Command string `yaml:"command,omitempty" toml:"command" env:"PORTAL_NOTIFY_COMMAND"`
	} `yaml:"notify" toml:"notify"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Database.Path = "./word.db"
	cfg.Server.Addr = ":5000"
	cfg.Server.AllowedOrigin = "*"
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "llama3"
	cfg.LLM.OllamaBaseURL = "http://localhost:11434"
	cfg.LLM.GroqURL = "https://api.groq.com/openai/v1/chat/completions"
	cfg.Embedding.Model = "nomic-embed-text"
	cfg.Embedding.BaseURL = "http://localhost:11434"
	cfg.Listening.DataDir = "./data"
	cfg.Listening.Languages = []string{"ja", "en"}
	cfg.Listening.Collection = "jlpt_questions"
	cfg.Listening.SearchResults = 3
	cfg.Listening.YouTubeURL = "https://www.youtube.com"
	cfg.Temperatures.WordGeneration = 0.7
	cfg.Temperatures.QuestionExtraction = 0
	cfg.Temperatures.QuestionGeneration = 0.7
	cfg.Daemon.Interval = "1h"
	cfg.Daemon.ReminderDays = 7
	cfg.Notify.Enabled = true
	return cfg
}

// LoadConfig reads the config file at path over the defaults, then applies
// environment overrides (including a .env file in the working directory).
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		if err := decodeConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

func decodeConfigFile(path string, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to parse config: %w", err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// WriteConfig writes cfg to path as YAML.
func WriteConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
