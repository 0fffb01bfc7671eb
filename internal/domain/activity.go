// Package domain contains the core data structures and domain logic for the application.
package domain

// ActivityKind tags which search query an ActivityItem came from and
// therefore which report subsection it renders under.
type ActivityKind int

const (
	MergedPR ActivityKind = iota
	ClosedIssue
)

// ActivityItem is the uniform representation of a merged pull request
// or a closed issue. Title is user-supplied text and must be escaped
// before it is placed in HTML.
type ActivityItem struct {
	Repo   string
	Kind   ActivityKind
	URL    string
	Number int
	Title  string
	Labels []string
}

// RepoActivity aggregates one tracked repository's activity over the
// digest window.
type RepoActivity struct {
	Repo         string
	MergedPRs    []ActivityItem
	ClosedIssues []ActivityItem
}

// Empty reports whether the repository had no activity in the window.
// Empty repositories are dropped from the digest entirely.
func (r RepoActivity) Empty() bool {
	return len(r.MergedPRs) == 0 && len(r.ClosedIssues) == 0
}

// UnlabeledGroup is the synthetic bucket for items carrying no stack label.
const UnlabeledGroup = "Unlabeled"

// LabelGroup is one bucket of the report grouped by stack label.
// Items keep their fetch order within the group.
type LabelGroup struct {
	Label string
	Items []ActivityItem
}

// DigestPost is the payload sent to the CMS post-creation endpoint.
type DigestPost struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
	Status  string `json:"status"`
	Tags    []int  `json:"tags"`
}
