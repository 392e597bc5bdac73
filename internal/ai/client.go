package ai

import (
	"context"
)

// Client is the interface for chat-completion providers
type Client interface {
	// Complete sends one chat request and returns the content of the first choice.
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

type ChatRequest struct {
	Model    string
	Messages []Message
	// Temperature is omitted from the request when nil.
	Temperature *float64
	// MaxTokens is omitted from the request when zero.
	MaxTokens int
}

// Message content is either a string or a []ContentPart (vision input).
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func TextMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

func Float(v float64) *float64 {
	return &v
}
