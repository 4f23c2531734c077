package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	APIKey          string `json:"api_key"`
	BaseURL         string `json:"base_url"`
	ChatModel       string `json:"chat_model"`
	WhisperModel    string `json:"whisper_model"`
	ASRProvider     string `json:"asr_provider"`     // "api-whisper", "local-whisper", "mock"
	SummaryProvider string `json:"summary_provider"` // "openai", "mock"
	DatabaseURL     string `json:"database_url"`
	TaskTTLMinutes  int    `json:"task_ttl_minutes"`
}

var globalConfig *Config

func LoadConfig() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	config := &Config{
		ChatModel:       "gpt-4o-mini",
		WhisperModel:    "base",
		ASRProvider:     "local-whisper",
		SummaryProvider: "openai",
		TaskTTLMinutes:  60,
	}

	// Try to load from config.json first
	if data, err := os.ReadFile("config.json"); err == nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config.json: %w", err)
		}
	}

	// Environment variables override file values
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.APIKey = key
	}
	if url := os.Getenv("BASE_URL"); url != "" {
		config.BaseURL = url
	}
	if model := os.Getenv("CHAT_MODEL"); model != "" {
		config.ChatModel = model
	}
	if model := os.Getenv("WHISPER_MODEL"); model != "" {
		config.WhisperModel = model
	}
	if asr := os.Getenv("ASR"); asr != "" {
		config.ASRProvider = strings.ToLower(strings.TrimSpace(asr))
	}
	if sum := os.Getenv("SUMMARIZER"); sum != "" {
		config.SummaryProvider = strings.ToLower(strings.TrimSpace(sum))
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.DatabaseURL = url
	}

	globalConfig = config
	return globalConfig, nil
}

// TaskTTL is how long terminal tasks stay visible to status polling before
// the tracker evicts them.
func (c *Config) TaskTTL() time.Duration {
	if c.TaskTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.TaskTTLMinutes) * time.Minute
}

func (c *Config) HasValidAPI() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.ChatModel) == "" {
		errs = append(errs, "chat model is required")
	}
	if strings.TrimSpace(c.WhisperModel) == "" {
		errs = append(errs, "whisper model is required")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func PrintConfigInstructions() {
	fmt.Println("\n=== Configuration ===")
	fmt.Println("Set the following in config.json or the environment:")
	fmt.Println("1. api_key / OPENAI_API_KEY: OpenAI API key (api-whisper and openai summarizer)")
	fmt.Println("2. base_url / BASE_URL: API base URL override (optional)")
	fmt.Println("3. chat_model / CHAT_MODEL: summarization model (default: gpt-4o-mini)")
	fmt.Println("4. whisper_model / WHISPER_MODEL: speech-to-text model tier (default: base)")
	fmt.Println("5. asr_provider / ASR: api-whisper | local-whisper | mock")
	fmt.Println("6. summary_provider / SUMMARIZER: openai | mock")
	fmt.Println("7. database_url / DATABASE_URL: Postgres URL; memory store is used when unset")
	fmt.Println("=====================")
}
