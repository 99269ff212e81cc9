package llm

import (
	"context"
	"fmt"

	"github.com/fitdeed/fitdeed-backend/internal/apperr"
	"github.com/fitdeed/fitdeed-backend/internal/config"
	"github.com/fitdeed/fitdeed-backend/internal/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// textModel abstracts the generative backend so tests can substitute a fake.
// The returned string is the raw JSON payload produced under the schema.
type textModel interface {
	generate(ctx context.Context, schema *genai.Schema, history []models.ConversationTurn, prompt string) (string, error)
}

// geminiModel talks to the Google Gemini API with a JSON response schema.
type geminiModel struct {
	client    *genai.Client
	modelName string
}

// newGeminiModel creates the Gemini backend from the application config.
func newGeminiModel(ctx context.Context, cfg *config.Config) (*geminiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiModel{client: client, modelName: cfg.GeminiModel}, nil
}

func (m *geminiModel) generate(ctx context.Context, schema *genai.Schema, history []models.ConversationTurn, prompt string) (string, error) {
	model := m.client.GenerativeModel(m.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema

	chat := model.StartChat()
	chat.History = toGenaiHistory(history)

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		// The request never produced a response; a connectivity problem, not
		// a bad generation.
		return "", &apperr.TransportFailure{Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &apperr.GenerationFailure{Err: fmt.Errorf("no content generated")}
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", &apperr.GenerationFailure{Err: fmt.Errorf("generated content is not text")}
	}

	return string(text), nil
}

// Close closes the underlying Gemini client.
func (m *geminiModel) Close() error {
	return m.client.Close()
}

// toGenaiHistory maps conversation turns onto the wire format, oldest first,
// without interpreting their contents.
func toGenaiHistory(history []models.ConversationTurn) []*genai.Content {
	if len(history) == 0 {
		return nil
	}
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		out = append(out, &genai.Content{
			Role:  turn.Role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}
	return out
}
