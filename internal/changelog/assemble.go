package changelog

import (
	"errors"

	"changelogd/internal/gateway/repository/changelogstore"
	"changelogd/internal/github"
)

// ErrNoCommits is returned when the generating request's range matched
// no commits; there is nothing to summarize and no most-recent-commit
// timestamp to derive.
var ErrNoCommits = errors.New("changelog: no commits in range")

// AssembleInput carries everything needed to build the persisted record
// for one job.
type AssembleInput struct {
	StartDate string
	EndDate   string
	Version   string
	Title     string
	Commits   []github.CommitSummary
	Draft     Draft
}

// AssembleRecord maps the draft sections 1:1 onto the persisted shape
// and derives the most-recent-commit timestamp from the fetched set.
// StartDate/EndDate are carried verbatim.
func AssembleRecord(in AssembleInput) (changelogstore.Record, error) {
	if len(in.Commits) == 0 {
		return changelogstore.Record{}, ErrNoCommits
	}

	// Strictly-greater comparison keeps the first-encountered commit on
	// timestamp ties.
	latest := in.Commits[0].Date
	for _, c := range in.Commits[1:] {
		if c.Date.After(latest) {
			latest = c.Date
		}
	}

	sections := make([]changelogstore.Section, 0, len(in.Draft.Changes))
	for _, sec := range in.Draft.Changes {
		points := make([]changelogstore.BulletPoint, 0, len(sec.Items))
		for _, item := range sec.Items {
			points = append(points, changelogstore.BulletPoint{
				BulletPointDetails:   item.Description,
				LinkToRelevantCommit: item.CommitLink,
			})
		}
		sections = append(sections, changelogstore.Section{
			Heading:      sec.Category,
			BulletPoints: points,
		})
	}

	return changelogstore.Record{
		TimestampOfMostRecentCommit: latest,
		Version:                     in.Version,
		Title:                       in.Title,
		StartDate:                   in.StartDate,
		EndDate:                     in.EndDate,
		Sections:                    sections,
	}, nil
}
