package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultBaseURL = "https://api.github.com"

// Client talks to the GitHub REST API for a single, fixed repository.
type Client struct {
	http    *http.Client
	baseURL string
	owner   string
	repo    string
	token   string

	// Commit details are immutable per sha, so a small LRU avoids
	// re-fetching patches across jobs and pages.
	detailCache *lru.Cache[string, CommitDetail]
}

func NewClient(owner, repo, token string) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required")
	}
	cache, err := lru.New[string, CommitDetail](512)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		baseURL:     defaultBaseURL,
		owner:       owner,
		repo:        repo,
		token:       token,
		detailCache: cache,
	}, nil
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(base string) { c.baseURL = base }

// CommitLink builds the permanent web link for a commit sha from the
// fixed repository coordinates.
func (c *Client) CommitLink(sha string) string {
	return fmt.Sprintf("https://github.com/%s/%s/commit/%s", c.owner, c.repo, sha)
}

type listCommitItem struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

type commitDetailItem struct {
	listCommitItem
	Stats struct {
		Additions int `json:"additions"`
		Deletions int `json:"deletions"`
	} `json:"stats"`
	Files []struct {
		Filename string `json:"filename"`
		Patch    string `json:"patch"`
	} `json:"files"`
}

// ListCommits returns one page of commits in the given range, newest
// first (upstream ordering).
func (c *Client) ListCommits(ctx context.Context, opts ListOptions) ([]CommitSummary, error) {
	items, _, err := c.listCommitsPage(ctx, opts)
	return items, err
}

// ListCommitsInRange pages through the full range and returns every
// commit. Used by the generation pipeline, which needs the whole set.
func (c *Client) ListCommitsInRange(ctx context.Context, since, until time.Time) ([]CommitSummary, error) {
	var all []CommitSummary
	for page := 1; ; page++ {
		items, err := c.ListCommits(ctx, ListOptions{
			Page:    page,
			PerPage: 100,
			Since:   &since,
			Until:   &until,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < 100 {
			return all, nil
		}
	}
}

// CountCommits approximates the number of commits in a range by
// requesting a single-item page and reading the rel="last" page number
// from the Link header. With per_page=1 the last page number equals the
// total. When the header is absent the upstream returned everything in
// one page, and the count defaults to 1.
func (c *Client) CountCommits(ctx context.Context, since, until *time.Time) (int, error) {
	_, header, err := c.listCommitsPage(ctx, ListOptions{Page: 1, PerPage: 1, Since: since, Until: until})
	if err != nil {
		return 0, err
	}
	return LastPage(header.Get("Link")), nil
}

// GetCommit fetches the full detail (stats + per-file patches) for one
// commit, consulting the LRU cache first.
func (c *Client) GetCommit(ctx context.Context, sha string) (CommitDetail, error) {
	if cached, ok := c.detailCache.Get(sha); ok {
		return cached, nil
	}

	var item commitDetailItem
	u := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, c.owner, c.repo, sha)
	if _, err := c.get(ctx, u, &item); err != nil {
		return CommitDetail{}, err
	}

	detail := CommitDetail{
		CommitSummary: toSummary(item.listCommitItem),
		Additions:     item.Stats.Additions,
		Deletions:     item.Stats.Deletions,
	}
	for _, f := range item.Files {
		detail.Files = append(detail.Files, CommitFile{Filename: f.Filename, Patch: f.Patch})
	}
	c.detailCache.Add(sha, detail)
	return detail, nil
}

func (c *Client) listCommitsPage(ctx context.Context, opts ListOptions) ([]CommitSummary, http.Header, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	if opts.Since != nil {
		q.Set("since", opts.Since.UTC().Format(time.RFC3339))
	}
	if opts.Until != nil {
		q.Set("until", opts.Until.UTC().Format(time.RFC3339))
	}
	u := fmt.Sprintf("%s/repos/%s/%s/commits?%s", c.baseURL, c.owner, c.repo, q.Encode())

	var items []listCommitItem
	header, err := c.get(ctx, u, &items)
	if err != nil {
		return nil, nil, err
	}
	out := make([]CommitSummary, 0, len(items))
	for _, it := range items {
		out = append(out, toSummary(it))
	}
	return out, header, nil
}

func (c *Client) get(ctx context.Context, rawURL string, v any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("github: %s returned %d: %s", req.URL.Path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return nil, fmt.Errorf("github: decode response: %w", err)
	}
	return resp.Header, nil
}

func toSummary(it listCommitItem) CommitSummary {
	date, _ := time.Parse(time.RFC3339, it.Commit.Author.Date)
	return CommitSummary{
		SHA:     it.SHA,
		Message: it.Commit.Message,
		Author:  it.Commit.Author.Name,
		Date:    date,
		Link:    it.HTMLURL,
	}
}
