package changelogstore

import (
	"sort"
	"strconv"
	"time"
)

func (s *Store) appendMem(rec Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec.ID = strconv.FormatInt(s.nextID, 10)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.records = append(s.records, rec)
	return rec.ID, nil
}

func (s *Store) pageMem(pageSize int, cursor string) Page {
	s.mu.RLock()
	sorted := make([]Record, len(s.records))
	copy(sorted, s.records)
	s.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartDate != sorted[j].StartDate {
			return sorted[i].StartDate > sorted[j].StartDate
		}
		a, _ := strconv.ParseInt(sorted[i].ID, 10, 64)
		b, _ := strconv.ParseInt(sorted[j].ID, 10, 64)
		return a > b
	})

	var items []Record
	for _, rec := range sorted {
		if cursor != "" && rec.StartDate >= cursor {
			continue
		}
		items = append(items, rec)
		if len(items) > pageSize {
			break
		}
	}
	return buildPage(items, pageSize)
}
