package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/askksa/askksa/internal/models"
)

// GeminiGenerator implements Generator using the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator. The API key is read
// from GEMINI_API_KEY or GOOGLE_API_KEY; it is never taken from config files.
func NewGeminiGenerator(ctx context.Context, model string) (*GeminiGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY must be set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends the message sequence to Gemini and returns the answer text.
// The system message becomes the system instruction; assistant turns map to
// the model role.
func (g *GeminiGenerator) Generate(ctx context.Context, messages []models.Message) (string, error) {
	var system string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = m.Content
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		return "", fmt.Errorf("no user content to send")
	}

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return res.Text(), nil
}

// Close releases the client. The genai client holds no persistent
// connections, so this is a no-op kept for interface symmetry.
func (g *GeminiGenerator) Close() error {
	return nil
}
