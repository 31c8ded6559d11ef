package github

import "time"

// CommitSummary is the list-endpoint view of a commit. Immutable once
// fetched; the upstream never rewrites published history metadata.
type CommitSummary struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Link    string    `json:"link"`
}

// CommitFile carries the per-file diff of a commit. Patch is empty for
// binary or rename-only entries.
type CommitFile struct {
	Filename string `json:"filename"`
	Patch    string `json:"patch,omitempty"`
}

// CommitDetail is a CommitSummary enriched with diff stats and per-file
// patches. Fetched on demand, never persisted.
type CommitDetail struct {
	CommitSummary
	Additions int          `json:"additions"`
	Deletions int          `json:"deletions"`
	Files     []CommitFile `json:"files"`
}

// ListOptions selects a page of commits in an optional date range.
// Page is 1-based, matching the upstream convention.
type ListOptions struct {
	Page    int
	PerPage int
	Since   *time.Time
	Until   *time.Time
}
