package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrInvalidJSON is returned when the model reply carries no usable
// JSON payload.
var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// Client is the minimal surface the changelog pipeline needs from a
// text-generation backend: one prompt in, one JSON document out.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error)
	Close() error
}
