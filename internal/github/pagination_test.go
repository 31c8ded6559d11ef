package github

import "testing"

func TestLastPage(t *testing.T) {
	header := `<https://api.github.com/repos/acme/widget/commits?page=2&per_page=1>; rel="next", ` +
		`<https://api.github.com/repos/acme/widget/commits?page=42&per_page=1>; rel="last"`
	if got := LastPage(header); got != 42 {
		t.Fatalf("LastPage = %d, want 42", got)
	}

	// No Link header: the upstream returned the only page.
	if got := LastPage(""); got != 1 {
		t.Fatalf("LastPage(empty) = %d, want 1", got)
	}
	// Link header without rel="last" (e.g. only prev/first) also means
	// the current page is the final one.
	noLast := `<https://api.github.com/repos/acme/widget/commits?page=1&per_page=1>; rel="prev"`
	if got := LastPage(noLast); got != 1 {
		t.Fatalf("LastPage(no last) = %d, want 1", got)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct{ total, size, want int }{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.size); got != c.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", c.total, c.size, got, c.want)
		}
	}
}

func TestHasMore(t *testing.T) {
	for page := 0; page < 20; page++ {
		for _, size := range []int{1, 3, 10} {
			for _, total := range []int{0, 1, 9, 10, 11, 100} {
				want := (page+1)*size < total
				if got := HasMore(page, size, total); got != want {
					t.Fatalf("HasMore(%d, %d, %d) = %v, want %v", page, size, total, got, want)
				}
			}
		}
	}
}
