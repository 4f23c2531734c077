package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"meetingSummarize/config"
	"meetingSummarize/core"
)

// Summarizer converts raw transcript text into structured meeting data.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (core.MeetingSummary, error)
}

// LLMSummarizer makes a single chat completion call with a JSON-typed
// response format. Forcing JSON output keeps parsing simple, but the
// response is still defended against missing keys and malformed bodies.
type LLMSummarizer struct {
	cli   *openai.Client
	model string
}

// MockSummarizer derives a trivial summary locally for offline runs.
type MockSummarizer struct{}

func NewLLMSummarizer(cfg *config.Config) *LLMSummarizer {
	return &LLMSummarizer{cli: newOpenAIClient(cfg), model: cfg.ChatModel}
}

// PickSummarizer selects the summarizer from config.
func PickSummarizer(cfg *config.Config) Summarizer {
	switch cfg.SummaryProvider {
	case "mock":
		return MockSummarizer{}
	default:
		if !cfg.HasValidAPI() {
			fmt.Println("Warning: API configuration not found for summarizer, using MockSummarizer")
			return MockSummarizer{}
		}
		return NewLLMSummarizer(cfg)
	}
}

func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`Read the meeting transcript and extract a summary of it. Do not include anything from your side, just understand the meeting and provide the following. The output must be JSON:

Transcript:
%s

Provide:
- A concise title for the meeting.
- Key points discussed (as bullet points).
- Action items.
- Summary.
- Participants.
- Add as many entries as the transcript supports for key_points, action_items and participants.

Example JSON format:

{
  "title": "title xyz",
  "key_points": ["key point 1", "key point 2"],
  "action_items": ["action item 1", "action item 2"],
  "summary": "summary of the whole meeting",
  "participants": ["Person 1", "Person 2"]
}
`, transcript)
}

func (s *LLMSummarizer) Summarize(ctx context.Context, transcript string) (core.MeetingSummary, error) {
	resp, err := s.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: summaryPrompt(transcript),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return core.MeetingSummary{}, fmt.Errorf("summarization api: %v", err)
	}
	if len(resp.Choices) == 0 {
		return core.MeetingSummary{}, fmt.Errorf("summarization api: no choices returned")
	}
	return ParseMeetingSummary([]byte(resp.Choices[0].Message.Content))
}

// ParseMeetingSummary parses the model's JSON body, filling defaults for
// missing fields. Malformed JSON is a terminal ErrParse for the task.
func ParseMeetingSummary(body []byte) (core.MeetingSummary, error) {
	var raw struct {
		Title        *string  `json:"title"`
		KeyPoints    []string `json:"key_points"`
		ActionItems  []string `json:"action_items"`
		Summary      *string  `json:"summary"`
		Participants []string `json:"participants"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return core.MeetingSummary{}, fmt.Errorf("%w: failed to parse AI response: %v", core.ErrParse, err)
	}

	out := core.MeetingSummary{
		Title:        "Untitled Meeting",
		KeyPoints:    []string{},
		ActionItems:  []string{},
		Summary:      "No summary",
		Participants: []string{},
	}
	if raw.Title != nil {
		out.Title = *raw.Title
	}
	if raw.Summary != nil {
		out.Summary = *raw.Summary
	}
	if raw.KeyPoints != nil {
		out.KeyPoints = raw.KeyPoints
	}
	if raw.ActionItems != nil {
		out.ActionItems = raw.ActionItems
	}
	if raw.Participants != nil {
		out.Participants = raw.Participants
	}
	return out, nil
}

func (m MockSummarizer) Summarize(ctx context.Context, transcript string) (core.MeetingSummary, error) {
	sentences := strings.Split(strings.TrimSpace(transcript), ".")
	summary := transcript
	if len(sentences) > 3 {
		summary = strings.Join(sentences[:3], ".") + "."
	}
	return core.MeetingSummary{
		Title:        "Untitled Meeting",
		KeyPoints:    []string{},
		ActionItems:  []string{},
		Summary:      summary,
		Participants: []string{},
	}, nil
}
