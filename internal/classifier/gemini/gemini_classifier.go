package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"kycdocs/internal/classifier"
	"kycdocs/internal/config"
	"kycdocs/internal/domain"
	"kycdocs/internal/port"
)

// Classifier implements port.PageClassifier using the Gemini API.
type Classifier struct {
	apiKey   string
	model    string
	provider string
	level    int
	timeout  time.Duration
}

// NewClassifier creates a Gemini-based page classifier from a provider
// config.
func NewClassifier(cfg *config.ProviderConfig) *Classifier {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-1.5-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Classifier{
		apiKey:   cfg.APIKey,
		model:    model,
		provider: "gemini",
		level:    cfg.Level,
		timeout:  timeout,
	}
}

func (c *Classifier) Classify(ctx context.Context, input port.ClassifyInput) (domain.ClassificationVote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return domain.ClassificationVote{}, fmt.Errorf("creating gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: genai.Ptr[int32](2048),
	}

	prompt := classifier.BuildClassificationPrompt(input.Types, input.CustomerType)
	parts := []genai.Part{
		genai.Text("System Instruction: " + prompt),
		genai.Text("Page text:\n" + input.OCRText),
	}
	if len(input.PageImage) > 0 {
		parts = append(parts, genai.Blob{
			MIMEType: input.ContentType,
			Data:     input.PageImage,
		})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return domain.ClassificationVote{}, fmt.Errorf("gemini classification: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return domain.ClassificationVote{}, fmt.Errorf("gemini classification: empty response")
	}

	return classifier.CleanResponse(sb.String(), c.provider, c.level), nil
}
