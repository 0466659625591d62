package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"kycdocs/internal/classifier"
	"kycdocs/internal/config"
	"kycdocs/internal/domain"
	"kycdocs/internal/port"
)

// Classifier implements port.PageClassifier using the OpenAI Chat
// Completions API.
type Classifier struct {
	client     *openai.Client
	model      string
	provider   string
	level      int
	maxRetries int
}

// NewClassifier creates an OpenAI-based page classifier from a provider
// config.
func NewClassifier(cfg *config.ProviderConfig) *Classifier {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o"
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.HTTPClient.Timeout = timeout(cfg.TimeoutSecs)

	return &Classifier{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		provider:   "openai",
		level:      cfg.Level,
		maxRetries: cfg.MaxRetries,
	}
}

func timeout(secs int) time.Duration {
	if secs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(secs) * time.Second
}

func (c *Classifier) Classify(ctx context.Context, input port.ClassifyInput) (domain.ClassificationVote, error) {
	prompt := classifier.BuildClassificationPrompt(input.Types, input.CustomerType)

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
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: userParts},
		},
		Temperature: 0.3,
		MaxTokens:   2048,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			log.Printf("classifier.openai: attempt %d failed: %v", attempt+1, err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion response")
			continue
		}
		return classifier.CleanResponse(resp.Choices[0].Message.Content, c.provider, c.level), nil
	}
	return domain.ClassificationVote{}, fmt.Errorf("openai classification: %w", lastErr)
}
