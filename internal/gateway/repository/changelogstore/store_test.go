package changelogstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seedRecords(t *testing.T, s *Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		// Later records get later start dates.
		start := fmt.Sprintf("2024-01-%02d", i+1)
		end := fmt.Sprintf("2024-02-%02d", i+1)
		_, err := s.Append(context.Background(), Record{
			Title:                       fmt.Sprintf("release %d", i+1),
			StartDate:                   start,
			EndDate:                     end,
			TimestampOfMostRecentCommit: time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
			Sections:                    []Section{},
		})
		require.NoError(t, err)
	}
}

func TestAppend_AssignsIDs(t *testing.T) {
	s := New()
	id1, err := s.Append(context.Background(), Record{StartDate: "2024-01-01"})
	require.NoError(t, err)
	id2, err := s.Append(context.Background(), Record{StartDate: "2024-01-02"})
	require.NoError(t, err)
	require.NotEmpty(t, id1)
	require.NotEqual(t, id1, id2)
}

func TestPageByStartDate_NewestFirst(t *testing.T) {
	s := New()
	seedRecords(t, s, 5)

	page, err := s.PageByStartDate(context.Background(), 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	require.False(t, page.HasMore)
	for i := 1; i < len(page.Items); i++ {
		require.Greater(t, page.Items[i-1].StartDate, page.Items[i].StartDate,
			"records must be ordered by startDate descending")
	}
}

func TestPageByStartDate_CursorWalk(t *testing.T) {
	s := New()
	seedRecords(t, s, 7)

	var seen []string
	cursor := ""
	for {
		page, err := s.PageByStartDate(context.Background(), 3, cursor)
		require.NoError(t, err)
		for _, rec := range page.Items {
			seen = append(seen, rec.StartDate)
		}
		if !page.HasMore {
			break
		}
		require.Equal(t, page.Items[len(page.Items)-1].StartDate, page.LastTimestamp,
			"cursor must be the last item's startDate")
		cursor = page.LastTimestamp
	}

	require.Len(t, seen, 7)
	for i := 1; i < len(seen); i++ {
		require.Greater(t, seen[i-1], seen[i], "cursor walk must never repeat or reorder")
	}
}

func TestPageByStartDate_HasMore(t *testing.T) {
	s := New()
	seedRecords(t, s, 4)

	page, err := s.PageByStartDate(context.Background(), 3, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	require.True(t, page.HasMore)

	page, err = s.PageByStartDate(context.Background(), 3, page.LastTimestamp)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.False(t, page.HasMore)
}

func TestPageByStartDate_Empty(t *testing.T) {
	s := New()
	page, err := s.PageByStartDate(context.Background(), 10, "")
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.False(t, page.HasMore)
	require.Empty(t, page.LastTimestamp)
}
