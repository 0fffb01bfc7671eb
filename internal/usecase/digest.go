// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/openverse-dev/weekly-digest/internal/domain"
	"github.com/openverse-dev/weekly-digest/internal/gateway"
)

// Digest is the use case producing the weekly activity report.
// It orchestrates the per-repository fetches and assembles the result.
type Digest struct {
	fetcher gateway.Fetcher
	logger  *log.Logger
}

// NewDigest creates a new Digest instance.
func NewDigest(fetcher gateway.Fetcher, logger *log.Logger) *Digest {
	return &Digest{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Collect fetches merged PRs and closed issues for every tracked
// repository over the window. Fetches run concurrently but the result
// keeps the input repo order, and repositories with no activity are
// dropped. The first failed query aborts the whole collection; a
// partial digest is never produced.
func (d *Digest) Collect(ctx context.Context, org string, repos []string, window domain.Window) ([]domain.RepoActivity, error) {
	d.logger.Printf("Usecase: Collecting activity for %d repositories since %s...", len(repos), window.StartDate())

	results := make([]domain.RepoActivity, len(repos))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		eg.Go(func() error {
			merged, err := d.fetcher.FetchMergedPRs(egCtx, org, repo, window)
			if err != nil {
				return err
			}
			closed, err := d.fetcher.FetchClosedIssues(egCtx, org, repo, window)
			if err != nil {
				return err
			}
			results[i] = domain.RepoActivity{Repo: repo, MergedPRs: merged, ClosedIssues: closed}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	active := make([]domain.RepoActivity, 0, len(results))
	for _, r := range results {
		if r.Empty() {
			continue
		}
		active = append(active, r)
	}
	d.logger.Printf("Usecase: %d of %d repositories had activity.", len(active), len(repos))
	return active, nil
}

// digestTagIDs are the fixed CMS category tags every weekly digest carries.
var digestTagIDs = []int{406}

// BuildPost wraps rendered digest content in the CMS payload. The slug
// is derived from the window dates, so re-running in the same week
// collides at the CMS instead of producing a duplicate post.
func BuildPost(window domain.Window, content string) domain.DigestPost {
	start, end := window.StartDate(), window.EndDate()
	return domain.DigestPost{
		Title:   fmt.Sprintf("A week in Openverse: %s - %s", start, end),
		Slug:    fmt.Sprintf("last-week-openverse-%s-%s", start, end),
		Excerpt: fmt.Sprintf("Closed issues and merged pull requests in Openverse repositories from %s to %s.", start, end),
		Content: content,
		Status:  "publish",
		Tags:    digestTagIDs,
	}
}
