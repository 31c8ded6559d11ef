package github

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var linkSegmentRe = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="([^"]+)"`)

// LastPage extracts the highest page number referenced by a Link
// pagination header. Returns 1 when the header is absent or carries no
// rel="last" entry, i.e. the response was the only page.
func LastPage(linkHeader string) int {
	last := 1
	for _, seg := range strings.Split(linkHeader, ",") {
		m := linkSegmentRe.FindStringSubmatch(seg)
		if m == nil || m[2] != "last" {
			continue
		}
		u, err := url.Parse(m[1])
		if err != nil {
			continue
		}
		if n, err := strconv.Atoi(u.Query().Get("page")); err == nil && n > last {
			last = n
		}
	}
	return last
}

// TotalPages is ceil(totalCommits / pageSize).
func TotalPages(totalCommits, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return (totalCommits + pageSize - 1) / pageSize
}

// HasMore reports whether a further page exists after the given
// 0-based page.
func HasMore(page, pageSize, totalCommits int) bool {
	return (page+1)*pageSize < totalCommits
}
