package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"changelogd/internal/changelog"
	"changelogd/internal/gateway/repository/artifact"
	"changelogd/internal/gateway/repository/changelogstore"
	"changelogd/internal/github"
	"changelogd/internal/llm"
)

// ErrJobNotFound signals an id with no job table entry. Distinct from
// internal failures; the HTTP boundary maps it to 404.
var ErrJobNotFound = errors.New("generation: job not found")

// CommitSource provides commit history for the configured repository.
type CommitSource interface {
	ListCommitsInRange(ctx context.Context, since, until time.Time) ([]github.CommitSummary, error)
	GetCommit(ctx context.Context, sha string) (github.CommitDetail, error)
	CommitLink(sha string) string
}

// Store appends assembled changelog records.
type Store interface {
	Append(ctx context.Context, rec changelogstore.Record) (string, error)
}

// Service owns the job lifecycle: it accepts generation requests,
// launches the background pipeline, and answers status polls. The job
// table is the only state shared between the HTTP path and background
// work; each job has exactly one writer (its own goroutine).
type Service struct {
	source    CommitSource
	model     llm.Client
	store     Store
	artifacts artifact.Store
	retention time.Duration

	mu   sync.RWMutex
	jobs map[string]Job
	subs map[string][]chan Job

	seq atomic.Int64
}

type Option func(*Service)

// WithRetention sets how long terminal jobs stay pollable before
// eviction. Zero disables eviction.
func WithRetention(d time.Duration) Option {
	return func(s *Service) { s.retention = d }
}

func New(source CommitSource, model llm.Client, store Store, artifacts artifact.Store, opts ...Option) *Service {
	if artifacts == nil {
		artifacts = artifact.NopStore{}
	}
	s := &Service{
		source:    source,
		model:     model,
		store:     store,
		artifacts: artifacts,
		retention: 30 * time.Minute,
		jobs:      make(map[string]Job),
		subs:      make(map[string][]chan Job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates that both bounds parse as timestamps, registers the
// job as processing, and dispatches the background pipeline. The job
// table entry is inserted before the goroutine starts, so any
// subsequent Status call for the returned id finds it. Range ordering
// is deliberately not validated here; an inverted range surfaces later
// as a failed job.
func (s *Service) Submit(startDate, endDate, version, title string) (string, error) {
	since, err := parseDate(startDate)
	if err != nil {
		return "", fmt.Errorf("generation: invalid startDate: %w", err)
	}
	until, err := parseDate(endDate)
	if err != nil {
		return "", fmt.Errorf("generation: invalid endDate: %w", err)
	}

	id := s.newJobID()
	s.mu.Lock()
	s.jobs[id] = Job{ID: id, Status: StatusProcessing}
	s.mu.Unlock()

	go s.run(id, since, until, startDate, endDate, version, title)
	return id, nil
}

// Status is a pure read of the job table.
func (s *Service) Status(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Subscribe returns a channel that yields the current job snapshot and
// then, if the job is still running, its terminal state. The channel is
// closed after the terminal snapshot.
func (s *Service) Subscribe(id string) (<-chan Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	ch := make(chan Job, 2)
	ch <- job
	if job.Terminal() {
		close(ch)
		return ch, nil
	}
	s.subs[id] = append(s.subs[id], ch)
	return ch, nil
}

func (s *Service) run(id string, since, until time.Time, startDate, endDate, version, title string) {
	ctx := context.Background()
	rec, err := s.generate(ctx, id, since, until, startDate, endDate, version, title)
	if err != nil {
		log.Printf("generation job %s failed: %v", id, err)
		s.finish(id, func(j *Job) {
			j.Status = StatusError
			j.Error = failureMessage
		})
		return
	}
	s.finish(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Changelog = &rec
	})
}

// generate runs the fetch -> summarize -> persist pipeline. Any error
// aborts the job; errors are coalesced into the single terminal
// transition by the caller.
func (s *Service) generate(ctx context.Context, id string, since, until time.Time, startDate, endDate, version, title string) (changelogstore.Record, error) {
	commits, err := s.source.ListCommitsInRange(ctx, since, until)
	if err != nil {
		return changelogstore.Record{}, fmt.Errorf("fetch commits: %w", err)
	}

	details := make([]github.CommitDetail, 0, len(commits))
	for _, c := range commits {
		detail, err := s.source.GetCommit(ctx, c.SHA)
		if err != nil {
			return changelogstore.Record{}, fmt.Errorf("fetch commit %s: %w", c.SHA, err)
		}
		details = append(details, detail)
	}

	prompt := changelog.RenderPrompt(details, s.source.CommitLink)
	s.putArtifact(ctx, id, "prompt.txt", []byte(prompt))

	raw, err := s.model.GenerateJSON(ctx, prompt)
	if err != nil {
		return changelogstore.Record{}, fmt.Errorf("summarize: %w", err)
	}
	s.putArtifact(ctx, id, "response.json", raw)

	draft, err := changelog.ParseDraft(raw)
	if err != nil {
		return changelogstore.Record{}, err
	}

	rec, err := changelog.AssembleRecord(changelog.AssembleInput{
		StartDate: startDate,
		EndDate:   endDate,
		Version:   version,
		Title:     title,
		Commits:   commits,
		Draft:     draft,
	})
	if err != nil {
		return changelogstore.Record{}, err
	}
	rec.CreatedAt = time.Now().UTC()

	recordID, err := s.store.Append(ctx, rec)
	if err != nil {
		return changelogstore.Record{}, fmt.Errorf("persist changelog: %w", err)
	}
	rec.ID = recordID
	return rec, nil
}

// finish applies the terminal transition exactly once, fans the final
// snapshot out to subscribers, and schedules eviction.
func (s *Service) finish(id string, mutate func(*Job)) {
	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok || job.Status != StatusProcessing {
		s.mu.Unlock()
		return
	}
	mutate(&job)
	job.Completed = true
	s.jobs[id] = job

	subs := s.subs[id]
	delete(s.subs, id)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- job:
		default:
		}
		close(ch)
	}

	if s.retention > 0 {
		time.AfterFunc(s.retention, func() { s.evict(id) })
	}
}

func (s *Service) evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

func (s *Service) putArtifact(ctx context.Context, id, path string, content []byte) {
	if err := s.artifacts.Put(ctx, id, path, content); err != nil {
		log.Printf("generation job %s: artifact %s: %v", id, path, err)
	}
}

func (s *Service) newJobID() string {
	return fmt.Sprintf("job-%d-%d", time.Now().UnixNano(), s.seq.Add(1))
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
