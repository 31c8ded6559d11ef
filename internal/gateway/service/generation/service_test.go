package generation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"changelogd/internal/gateway/repository/artifact"
	"changelogd/internal/gateway/repository/changelogstore"
	"changelogd/internal/github"
	"changelogd/internal/llm"
)

type fakeSource struct {
	commits []github.CommitSummary
	details map[string]github.CommitDetail
	listErr error
	// When set, ListCommitsInRange blocks until the channel is closed,
	// letting tests observe the processing state.
	gate chan struct{}
}

func (f *fakeSource) ListCommitsInRange(_ context.Context, _, _ time.Time) ([]github.CommitSummary, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.commits, f.listErr
}

func (f *fakeSource) GetCommit(_ context.Context, sha string) (github.CommitDetail, error) {
	if d, ok := f.details[sha]; ok {
		return d, nil
	}
	return github.CommitDetail{CommitSummary: github.CommitSummary{SHA: sha}}, nil
}

func (f *fakeSource) CommitLink(sha string) string {
	return "https://github.com/acme/widget/commit/" + sha
}

func testCommits(t *testing.T) []github.CommitSummary {
	t.Helper()
	d1, _ := time.Parse("2006-01-02", "2024-01-01")
	d2, _ := time.Parse("2006-01-02", "2024-01-05")
	return []github.CommitSummary{
		{SHA: "a1", Date: d1},
		{SHA: "a2", Date: d2},
	}
}

func waitTerminal(t *testing.T, s *Service, id string) Job {
	t.Helper()
	sub, err := s.Subscribe(id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	deadline := time.After(5 * time.Second)
	for {
		select {
		case job, ok := <-sub:
			if !ok {
				got, found := s.Status(id)
				if !found {
					t.Fatalf("job %s vanished before terminal state", id)
				}
				return got
			}
			if job.Terminal() {
				return job
			}
		case <-deadline:
			t.Fatalf("job %s did not reach a terminal state", id)
		}
	}
}

func TestSubmit_ReturnsBeforeBackgroundWork(t *testing.T) {
	gate := make(chan struct{})
	source := &fakeSource{commits: testCommits(t), gate: gate}
	model := &llm.FakeClient{Payload: json.RawMessage(`{"changes":[]}`)}
	s := New(source, model, changelogstore.New(), nil, WithRetention(0))

	id, err := s.Submit("2024-01-01", "2024-01-31", "", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	job, ok := s.Status(id)
	if !ok {
		t.Fatalf("job must be visible immediately after submit")
	}
	if job.Status != StatusProcessing || job.Completed {
		t.Fatalf("fresh job = %+v, want processing/incomplete", job)
	}

	close(gate)
	final := waitTerminal(t, s, id)
	if final.Status != StatusCompleted {
		t.Fatalf("final status = %s, want completed", final.Status)
	}
}

func TestStatus_UnknownJob(t *testing.T) {
	s := New(&fakeSource{}, llm.NewFakeClient(), changelogstore.New(), nil)
	if _, ok := s.Status("does-not-exist"); ok {
		t.Fatalf("unknown id must not resolve")
	}
}

func TestSubmit_RejectsUnparseableDates(t *testing.T) {
	s := New(&fakeSource{}, llm.NewFakeClient(), changelogstore.New(), nil)
	if _, err := s.Submit("not-a-date", "2024-01-31", "", ""); err == nil {
		t.Fatalf("expected error for bad startDate")
	}
	if _, err := s.Submit("2024-01-01", "also bad", "", ""); err == nil {
		t.Fatalf("expected error for bad endDate")
	}
}

func TestJobCompletion_CarriesAssembledRecord(t *testing.T) {
	source := &fakeSource{commits: testCommits(t)}
	model := &llm.FakeClient{Payload: json.RawMessage(
		`{"changes":[{"category":"Features","items":[{"description":"Added dark mode","commitLink":"https://github.com/acme/widget/commit/a2"}]}]}`,
	)}
	artifacts := artifact.NewMemoryStore()
	s := New(source, model, changelogstore.New(), artifacts, WithRetention(0))

	id, err := s.Submit("2024-01-01", "2024-01-31", "v1.2.0", "January release")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	job := waitTerminal(t, s, id)

	if job.Status != StatusCompleted || !job.Completed {
		t.Fatalf("job = %+v, want completed", job)
	}
	rec := job.Changelog
	if rec == nil || rec.ID == "" {
		t.Fatalf("completed job must carry the stored record, got %+v", rec)
	}
	want, _ := time.Parse("2006-01-02", "2024-01-05")
	if !rec.TimestampOfMostRecentCommit.Equal(want) {
		t.Fatalf("most recent commit = %v, want %v", rec.TimestampOfMostRecentCommit, want)
	}
	if rec.Version != "v1.2.0" || rec.Title != "January release" {
		t.Fatalf("caller-supplied fields lost: %+v", rec)
	}
	if len(rec.Sections) != 1 || rec.Sections[0].Heading != "Features" {
		t.Fatalf("sections not mapped: %+v", rec.Sections)
	}

	// Transcripts are written for operators.
	if _, ok := artifacts.Get(id, "prompt.txt"); !ok {
		t.Fatalf("prompt transcript missing")
	}
	if _, ok := artifacts.Get(id, "response.json"); !ok {
		t.Fatalf("response transcript missing")
	}
}

func TestJobFailure_CoalescesToGenericError(t *testing.T) {
	source := &fakeSource{listErr: errors.New("github: rate limited")}
	s := New(source, llm.NewFakeClient(), changelogstore.New(), nil, WithRetention(0))

	id, err := s.Submit("2024-01-01", "2024-01-31", "", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	job := waitTerminal(t, s, id)

	if job.Status != StatusError || !job.Completed {
		t.Fatalf("job = %+v, want error/completed", job)
	}
	if job.Error != "Failed to generate changelog" {
		t.Fatalf("error = %q; internal detail must not leak", job.Error)
	}
	if job.Changelog != nil {
		t.Fatalf("failed job must not carry a record")
	}

	// Terminal reads are idempotent.
	again, _ := s.Status(id)
	if again.Status != job.Status || again.Error != job.Error {
		t.Fatalf("repeated status read changed: %+v vs %+v", again, job)
	}
}

func TestJobFailure_MalformedModelReply(t *testing.T) {
	source := &fakeSource{commits: testCommits(t)}
	model := &llm.FakeClient{Payload: json.RawMessage(`this is not the shape you asked for`)}
	s := New(source, model, changelogstore.New(), nil, WithRetention(0))

	id, _ := s.Submit("2024-01-01", "2024-01-31", "", "")
	job := waitTerminal(t, s, id)
	if job.Status != StatusError {
		t.Fatalf("malformed model reply must fail the job, got %s", job.Status)
	}
}

func TestTerminalJobEviction(t *testing.T) {
	source := &fakeSource{commits: testCommits(t)}
	s := New(source, llm.NewFakeClient(), changelogstore.New(), nil,
		WithRetention(20*time.Millisecond))

	id, _ := s.Submit("2024-01-01", "2024-01-31", "", "")
	waitTerminal(t, s, id)

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := s.Status(id); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("terminal job was never evicted")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSubscribe_UnknownJob(t *testing.T) {
	s := New(&fakeSource{}, llm.NewFakeClient(), changelogstore.New(), nil)
	if _, err := s.Subscribe("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}
