package usecase

import (
	"fmt"
	"html"
	"strings"

	"github.com/openverse-dev/weekly-digest/internal/domain"
)

// RenderRepos converts per-repository activity into the digest's HTML
// fragment. Sections with zero items are omitted entirely, and every
// title is escaped before insertion. Fragments appear in input order,
// joined by newlines.
func RenderRepos(org string, activities []domain.RepoActivity) string {
	fragments := make([]string, 0, len(activities))
	for _, a := range activities {
		lines := []string{
			fmt.Sprintf(`<h2><a href="https://github.com/%s/%s">%s</a></h2>`, org, a.Repo, a.Repo),
		}
		lines = appendSection(lines, "Merged PRs", a.MergedPRs, false, org)
		lines = appendSection(lines, "Closed issues", a.ClosedIssues, false, org)
		fragments = append(fragments, strings.Join(lines, "\n"))
	}
	return strings.Join(fragments, "\n")
}

// RenderGroups converts label-grouped activity into the digest's HTML
// fragment. Because items from different repositories share a group,
// each list entry is qualified with its org/repo.
func RenderGroups(org string, groups []domain.LabelGroup) string {
	fragments := make([]string, 0, len(groups))
	for _, g := range groups {
		var merged, closed []domain.ActivityItem
		for _, item := range g.Items {
			if item.Kind == domain.MergedPR {
				merged = append(merged, item)
			} else {
				closed = append(closed, item)
			}
		}
		lines := []string{fmt.Sprintf("<h2>%s</h2>", html.EscapeString(g.Label))}
		lines = appendSection(lines, "Merged PRs", merged, true, org)
		lines = appendSection(lines, "Closed issues", closed, true, org)
		fragments = append(fragments, strings.Join(lines, "\n"))
	}
	return strings.Join(fragments, "\n")
}

func appendSection(lines []string, heading string, items []domain.ActivityItem, qualified bool, org string) []string {
	if len(items) == 0 {
		return lines
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, item := range items {
		ref := fmt.Sprintf("#%d", item.Number)
		if qualified {
			ref = fmt.Sprintf("%s/%s#%d", org, item.Repo, item.Number)
		}
		fmt.Fprintf(&b, `<li><a href="%s">%s</a>: %s</li>`, item.URL, ref, html.EscapeString(item.Title))
	}
	b.WriteString("</ul>")
	return append(lines, fmt.Sprintf("<h3>%s</h3>", heading), b.String())
}
