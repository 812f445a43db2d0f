package clinic

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ChatbotPrompt is a system prompt driving the patient-facing chatbot.
type ChatbotPrompt struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Model       string     `json:"model"`
	Temperature float64    `json:"temperature"`
	Version     int        `json:"version"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type promptWire struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Version     int     `json:"version"`
	IsActive    bool    `json:"isActive"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func mapPrompt(raw json.RawMessage) (ChatbotPrompt, error) {
	var w promptWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return ChatbotPrompt{}, err
	}
	return ChatbotPrompt{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Content:     w.Content,
		Model:       w.Model,
		Temperature: w.Temperature,
		Version:     w.Version,
		IsActive:    w.IsActive,
		CreatedAt:   parseDate(w.CreatedAt),
		UpdatedAt:   parseDate(w.UpdatedAt),
	}, nil
}

// PromptInput is the create/update payload for chatbot prompts.
type PromptInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Content     *string  `json:"content,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// PromptsService operates on /chatbot/prompts. Activating a prompt makes it
// the one the chatbot serves; only one prompt is active at a time, which the
// backend enforces.
type PromptsService struct {
	c *Client
}

func (c *Client) Prompts() *PromptsService { return &PromptsService{c: c} }

func (s *PromptsService) List(ctx context.Context, f Filter) (*ListPage[ChatbotPrompt], error) {
	return listResource(ctx, s.c, "/chatbot/prompts", f, "Error al obtener prompts", mapPrompt)
}

func (s *PromptsService) Get(ctx context.Context, id string) (*ChatbotPrompt, error) {
	return requestEntity(ctx, s.c, http.MethodGet, "/chatbot/prompts/"+id, nil, "Error al obtener el prompt", mapPrompt)
}

func (s *PromptsService) Create(ctx context.Context, in PromptInput) (*ChatbotPrompt, error) {
	return requestEntity(ctx, s.c, http.MethodPost, "/chatbot/prompts", in, "Error al crear el prompt", mapPrompt)
}

func (s *PromptsService) Update(ctx context.Context, id string, in PromptInput) (*ChatbotPrompt, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/chatbot/prompts/"+id, in, "Error al actualizar el prompt", mapPrompt)
}

func (s *PromptsService) Activate(ctx context.Context, id string) (*ChatbotPrompt, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/chatbot/prompts/"+id+"/activate", nil, "Error al activar el prompt", mapPrompt)
}

func (s *PromptsService) Deactivate(ctx context.Context, id string) (*ChatbotPrompt, error) {
	return requestEntity(ctx, s.c, http.MethodPatch, "/chatbot/prompts/"+id+"/deactivate", nil, "Error al desactivar el prompt", mapPrompt)
}

// Delete permanently removes a prompt version.
func (s *PromptsService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	return deleteResource(ctx, s.c, "/chatbot/prompts/"+id, "Error al eliminar el prompt")
}
