package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"changelogd/internal/gateway/repository/changelogstore"
	"changelogd/internal/gateway/service/generation"
)

// ChangelogPager reads persisted changelogs newest-first with a
// startDate cursor.
type ChangelogPager interface {
	PageByStartDate(ctx context.Context, pageSize int, cursor string) (changelogstore.Page, error)
}

// JobService is the orchestrator surface the HTTP boundary uses.
type JobService interface {
	Submit(startDate, endDate, version, title string) (string, error)
	Status(id string) (generation.Job, bool)
}

// ChangelogsHandler serves the /api/changelogs routes.
type ChangelogsHandler struct {
	store ChangelogPager
	jobs  JobService
}

func NewChangelogsHandler(store ChangelogPager, jobs JobService) *ChangelogsHandler {
	return &ChangelogsHandler{store: store, jobs: jobs}
}

// HandleCollection dispatches GET (paginated read) and POST (submit a
// generation job) on /api/changelogs.
func (h *ChangelogsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ChangelogsHandler) list(w http.ResponseWriter, r *http.Request) {
	pageSize := queryInt(r, "pageSize", 10)
	if pageSize == 0 {
		pageSize = 10
	}
	cursor := r.URL.Query().Get("lastTimestamp")

	page, err := h.store.PageByStartDate(r.Context(), pageSize, cursor)
	if err != nil {
		log.Printf("changelogs: page read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch changelogs")
		return
	}
	if page.Items == nil {
		page.Items = []changelogstore.Record{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ChangelogsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Version   string `json:"version"`
		Title     string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	id, err := h.jobs.Submit(in.StartDate, in.EndDate, in.Version, in.Title)
	if err != nil {
		writeError(w, http.StatusBadRequest, "startDate and endDate must be valid dates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// HandleStatus serves GET /api/changelogs/status/{id}.
func (h *ChangelogsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/changelogs/status/")
	job, ok := h.jobs.Status(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}
