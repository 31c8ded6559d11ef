package llm

import (
	"context"
	"encoding/json"
)

// FakeClient returns a canned JSON payload. Used for offline runs and
// tests.
type FakeClient struct {
	Payload json.RawMessage
	Err     error
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Payload: json.RawMessage(`{"changes":[]}`)}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Payload, nil
}
