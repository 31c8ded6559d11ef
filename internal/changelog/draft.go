package changelog

import (
	"encoding/json"
	"errors"
	"fmt"

	"changelogd/internal/util/jsonutil"
)

// ErrMalformedDraft is returned when the model reply does not match the
// requested draft shape.
var ErrMalformedDraft = errors.New("changelog: model response does not match draft shape")

// Draft is the summarizer's structured output, produced once per job
// and never persisted as-is.
type Draft struct {
	Changes []DraftSection `json:"changes"`
}

type DraftSection struct {
	Category string      `json:"category"`
	Items    []DraftItem `json:"items"`
}

type DraftItem struct {
	Description string `json:"description"`
	CommitLink  string `json:"commitLink"`
}

// ParseDraft decodes the raw model reply into a Draft. A reply that
// cannot be decoded, or that lacks the "changes" key, fails the
// pipeline.
func ParseDraft(raw json.RawMessage) (Draft, error) {
	var d Draft
	if err := jsonutil.UnmarshalFlex(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	if d.Changes == nil {
		return Draft{}, ErrMalformedDraft
	}
	return d, nil
}
