package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kycdocs/internal/config"
	"kycdocs/internal/domain"
	"kycdocs/internal/extractor"
	"kycdocs/internal/port"
)

// Extractor implements port.EntityExtractor using the OpenAI Chat
// Completions API.
type Extractor struct {
	client     *openai.Client
	model      string
	maxRetries int
}

// NewExtractor creates an OpenAI-based entity extractor from a provider
// config.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient.Timeout = timeout(cfg.TimeoutSecs)

	return &Extractor{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		maxRetries: cfg.MaxRetries,
	}
}

func timeout(secs int) time.Duration {
	if secs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(secs) * time.Second
}

func (e *Extractor) Model() string { return e.model }

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) ([]domain.Entity, error) {
	prompt := extractor.BuildExtractionPrompt(input.DocType, input.CustomerType)

	userParts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: "Page text:\n" + input.OCRText},
	}
	if len(input.PageImage) > 0 {
		dataURL := fmt.Sprintf("data:%s;base64,%s", input.ContentType, base64.StdEncoding.EncodeToString(input.PageImage))
		userParts = append(userParts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
		})
	}

	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: userParts},
		},
		Temperature: 0.1,
		MaxTokens:   4096,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		resp, err := e.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			log.Printf("extractor.openai: attempt %d failed: %v", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion response")
			continue
		}
		flat := extractor.CleanResponse(resp.Choices[0].Message.Content)
		return extractor.MatchTemplateEntities(flat, input.DocType, input.CustomerType, e.model), nil
	}
	return nil, fmt.Errorf("openai extraction: %w", lastErr)
}
