package changelog

import (
	"fmt"
	"strings"
	"testing"

	"changelogd/internal/github"
)

func TestPreviewPatch_Truncation(t *testing.T) {
	for n := 0; n <= 12; n++ {
		var lines []string
		for i := 0; i < n; i++ {
			lines = append(lines, fmt.Sprintf("+line %d", i))
		}
		patch := strings.Join(lines, "\n")

		got := PreviewPatch(patch)
		gotLines := strings.Split(got, "\n")

		wantLines := n
		if n > 5 {
			wantLines = 6 // 5 patch lines + ellipsis marker
		}
		if n == 0 {
			wantLines = 1 // empty string splits to one empty element
		}
		if len(gotLines) != wantLines {
			t.Fatalf("n=%d: got %d rendered lines, want %d", n, len(gotLines), wantLines)
		}
		if n > 5 && gotLines[len(gotLines)-1] != "..." {
			t.Fatalf("n=%d: expected ellipsis marker, got %q", n, gotLines[len(gotLines)-1])
		}
		if n > 0 && n <= 5 && got != patch {
			t.Fatalf("n=%d: short patch must be verbatim", n)
		}
	}
}

func TestRenderPrompt(t *testing.T) {
	commits := []github.CommitDetail{
		{
			CommitSummary: github.CommitSummary{SHA: "abc123", Message: "Add dark mode"},
			Additions:     10,
			Deletions:     2,
			Files: []github.CommitFile{
				{Filename: "theme.go", Patch: "+dark\n+mode"},
				{Filename: "logo.png"}, // no patch: binary
			},
		},
		{
			CommitSummary: github.CommitSummary{SHA: "def456", Message: "Fix crash"},
		},
	}
	linkFor := func(sha string) string { return "https://github.com/acme/widget/commit/" + sha }

	out := RenderPrompt(commits, linkFor)

	for _, want := range []string{
		"[PURPOSE]",
		"[RULES]",
		"[OUTPUT_FORMAT]",
		"[COMMITS]",
		`{"changes": [{"category": string, "items": [{"description": string, "commitLink": string}]}]}`,
		"https://github.com/acme/widget/commit/abc123",
		"https://github.com/acme/widget/commit/def456",
		"File theme.go:",
		"+dark",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "logo.png") {
		t.Fatalf("patch-less file must be omitted from the prompt")
	}
	if !strings.Contains(out, commitDelimiter) {
		t.Fatalf("commits must be separated by the delimiter")
	}
}
