package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"meetingSummarize/config"
	"meetingSummarize/core"
)

// ASRProvider converts a stored audio file into raw transcript text.
type ASRProvider interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperASR calls the hosted Whisper API.
type WhisperASR struct {
	cli   *openai.Client
	model string
}

// LocalWhisperASR shells out to a local Whisper install; no API key needed.
type LocalWhisperASR struct {
	model string
}

// MockASR produces a placeholder transcript for offline runs.
type MockASR struct{}

func (w WhisperASR) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := w.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("whisper api: %w: %v", core.ErrTranscription, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty transcription result", core.ErrTranscription)
	}
	return text, nil
}

const localWhisperScript = `#!/usr/bin/env python3
import whisper
import sys
import json
import os

model_size = os.getenv("WHISPER_MODEL", "base")
model = whisper.load_model(model_size)
result = model.transcribe(sys.argv[1], fp16=False)
print(json.dumps({"text": result["text"].strip()}, ensure_ascii=False))
`

func (l LocalWhisperASR) Transcribe(ctx context.Context, audioPath string) (string, error) {
	scriptPath := filepath.Join(os.TempDir(), "whisper_transcribe.py")
	if err := os.WriteFile(scriptPath, []byte(localWhisperScript), 0644); err != nil {
		return "", fmt.Errorf("%w: write whisper script: %v", core.ErrTranscription, err)
	}
	defer os.Remove(scriptPath)

	py := os.Getenv("PYTHON")
	if py == "" {
		py = "python3"
	}
	cmd := exec.CommandContext(ctx, py, scriptPath, audioPath)
	cmd.Env = append(os.Environ(), "WHISPER_MODEL="+l.model)
	output, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("%w: local whisper: %s", core.ErrTranscription, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("%w: run local whisper: %v", core.ErrTranscription, err)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(output, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse whisper output: %v", core.ErrTranscription, err)
	}
	if parsed.Text == "" {
		return "", fmt.Errorf("%w: empty transcription result", core.ErrTranscription)
	}
	return parsed.Text, nil
}

func (m MockASR) Transcribe(ctx context.Context, audioPath string) (string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrTranscription, err)
	}
	return fmt.Sprintf("Placeholder transcript for %s (%d bytes)", filepath.Base(audioPath), info.Size()), nil
}

// PickASRProvider selects the provider from config, falling back to the local
// model when the API variant is requested without credentials.
func PickASRProvider(cfg *config.Config) ASRProvider {
	localModel := cfg.WhisperModel
	if localModel == "" {
		localModel = "base"
	}

	switch cfg.ASRProvider {
	case "mock":
		return MockASR{}
	case "api-whisper":
		if !cfg.HasValidAPI() {
			fmt.Println("Warning: API configuration not found for API Whisper, using LocalWhisperASR")
			return LocalWhisperASR{model: localModel}
		}
		// local model tiers don't exist on the API side
		model := cfg.WhisperModel
		if model == "" || model == "base" {
			model = openai.Whisper1
		}
		return WhisperASR{cli: newOpenAIClient(cfg), model: model}
	default:
		return LocalWhisperASR{model: localModel}
	}
}

func newOpenAIClient(cfg *config.Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}
