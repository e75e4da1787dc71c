package classify

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/amishk599/aisocjobs/internal/model"
)

// GeminiProvider calls the Gemini API with a JSON response MIME type so
// the assessment comes back as a bare JSON object in the common case.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a provider for the given model, e.g.
// "gemini-1.5-flash".
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, modelName: modelName}, nil
}

// Complete sends prompt to Gemini and returns the response text.
// Failures are wrapped in ModelError so callers fall back instead of
// dropping the posting.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: prompt}},
			Role:  "user",
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.modelName, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", &model.ModelError{Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &model.ModelError{Err: fmt.Errorf("empty response")}
	}
	return text, nil
}
