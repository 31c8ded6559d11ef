package changelog

import (
	"bytes"
	"fmt"
	"strings"

	"changelogd/internal/github"
)

const (
	// previewLines caps how much of each file patch reaches the model.
	previewLines = 5

	commitDelimiter = "\n=====\n"
)

var promptSections = []struct {
	name string
	body string
}{
	{"PURPOSE", "Summarize the following commits into a changelog for end users of the product."},
	{"RULES", strings.TrimSpace(`
- Group changes into categories that are relevant to end users (e.g. Features, Fixes, Performance).
- At most 10 bullet points in total across all categories.
- Order bullet points by importance to the user, most important first.
- Write in plain, non-technical language.
- Exclude purely internal changes: version bumps, refactors, test-only changes, CI tweaks.
- Every bullet point must include the link of the commit it describes.`)},
	{"OUTPUT_FORMAT", strings.TrimSpace(`
Respond with a single JSON object of exactly this shape and nothing else:
{"changes": [{"category": string, "items": [{"description": string, "commitLink": string}]}]}`)},
}

// RenderPrompt renders the fixed instruction template followed by one
// block per commit: message, permanent link, and truncated per-file
// patch previews.
func RenderPrompt(commits []github.CommitDetail, linkFor func(sha string) string) string {
	var buf bytes.Buffer
	for _, sec := range promptSections {
		fmt.Fprintf(&buf, "[%s]\n%s\n\n", sec.name, sec.body)
	}

	buf.WriteString("[COMMITS]\n")
	for i, c := range commits {
		if i > 0 {
			buf.WriteString(commitDelimiter)
		}
		writeCommit(&buf, c, linkFor(c.SHA))
	}
	return strings.TrimSpace(buf.String()) + "\n"
}

func writeCommit(buf *bytes.Buffer, c github.CommitDetail, link string) {
	fmt.Fprintf(buf, "Message: %s\n", strings.TrimSpace(c.Message))
	fmt.Fprintf(buf, "Link: %s\n", link)
	fmt.Fprintf(buf, "Stats: +%d -%d\n", c.Additions, c.Deletions)
	for _, f := range c.Files {
		// No patch body for binary or rename-only entries.
		if f.Patch == "" {
			continue
		}
		fmt.Fprintf(buf, "File %s:\n%s\n", f.Filename, PreviewPatch(f.Patch))
	}
}

// PreviewPatch keeps the first previewLines lines of a patch verbatim
// and appends an ellipsis marker when the patch had more.
func PreviewPatch(patch string) string {
	lines := strings.Split(patch, "\n")
	if len(lines) <= previewLines {
		return patch
	}
	return strings.Join(lines[:previewLines], "\n") + "\n..."
}
