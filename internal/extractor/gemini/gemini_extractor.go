package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"kycdocs/internal/config"
	"kycdocs/internal/domain"
	"kycdocs/internal/extractor"
	"kycdocs/internal/port"
)

// Extractor implements port.EntityExtractor using the Gemini API.
type Extractor struct {
	apiKey  string
	model   string
	timeout time.Duration
}

// NewExtractor creates a Gemini-based entity extractor from a provider
// config.
func NewExtractor(cfg *config.ProviderConfig) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-1.5-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Extractor{
		apiKey:  cfg.APIKey,
		model:   model,
		timeout: timeout,
	}
}

func (e *Extractor) Model() string { return e.model }

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) ([]domain.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(e.model)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      genai.Ptr[float32](0.1),
		MaxOutputTokens:  genai.Ptr[int32](4096),
		ResponseMIMEType: "application/json",
	}

	prompt := extractor.BuildExtractionPrompt(input.DocType, input.CustomerType)
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
		return nil, fmt.Errorf("gemini extraction: %w", err)
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
		return nil, fmt.Errorf("gemini extraction: empty response")
	}

	flat := extractor.CleanResponse(sb.String())
	return extractor.MatchTemplateEntities(flat, input.DocType, input.CustomerType, e.model), nil
}
