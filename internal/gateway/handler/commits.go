package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"changelogd/internal/github"
)

// CommitLister is the slice of the GitHub client the commits endpoint
// needs.
type CommitLister interface {
	ListCommits(ctx context.Context, opts github.ListOptions) ([]github.CommitSummary, error)
	CountCommits(ctx context.Context, since, until *time.Time) (int, error)
}

// CommitsHandler serves GET /api/commits.
type CommitsHandler struct {
	source CommitLister
}

func NewCommitsHandler(source CommitLister) *CommitsHandler {
	return &CommitsHandler{source: source}
}

func (h *CommitsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Pages are 0-based toward the client, 1-based upstream.
	page := queryInt(r, "page", 0)
	pageSize := queryInt(r, "pageSize", 10)
	if pageSize == 0 {
		pageSize = 10
	}

	since, err := optionalDate(r.URL.Query().Get("startDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate must be a valid date")
		return
	}
	until, err := optionalDate(r.URL.Query().Get("endDate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "endDate must be a valid date")
		return
	}

	total, err := h.source.CountCommits(r.Context(), since, until)
	if err != nil {
		log.Printf("commits: count failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch commits")
		return
	}

	items, err := h.source.ListCommits(r.Context(), github.ListOptions{
		Page:    page + 1,
		PerPage: pageSize,
		Since:   since,
		Until:   until,
	})
	if err != nil {
		log.Printf("commits: list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch commits")
		return
	}
	if items == nil {
		items = []github.CommitSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"totalPages": github.TotalPages(total, pageSize),
		"hasMore":    github.HasMore(page, pageSize, total),
	})
}

func optionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		t, err = time.Parse("2006-01-02", v)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
