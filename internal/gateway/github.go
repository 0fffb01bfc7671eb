// Package gateway provides gateways to the external services the
// automations talk to: the GitHub search API, the CMS post API and the
// chat webhook.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/openverse-dev/weekly-digest/internal/domain"
)

// FetchError reports a failed search query for a single repository.
// A single FetchError aborts the whole run; there is no partial digest.
type FetchError struct {
	Repo   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("activity query for %q failed with status %d: %v", e.Repo, e.Status, e.Err)
	}
	return fmt.Sprintf("activity query for %q failed: %v", e.Repo, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ReviewQueue holds the creation times of the open pull requests
// awaiting review in one repository.
type ReviewQueue struct {
	Repo     string
	OpenedAt []time.Time
}

// Fetcher defines the behavior of a gateway for fetching activity from GitHub.
type Fetcher interface {
	FetchMergedPRs(ctx context.Context, org, repo string, window domain.Window) ([]domain.ActivityItem, error)
	FetchClosedIssues(ctx context.Context, org, repo string, window domain.Window) ([]domain.ActivityItem, error)
	FetchReviewQueue(ctx context.Context, org, repo string) (ReviewQueue, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// reviewQueueQuery collects the creation time of every open pull
// request that still requires a review.
type reviewQueueQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node struct {
				Typename    string `graphql:"__typename"`
				PullRequest struct {
					CreatedAt githubv4.DateTime
				} `graphql:"... on PullRequest"`
			}
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchMergedPRs returns the pull requests merged in org/repo since the
// window's lower bound. The query has no upper bound; anything merged
// between the nominal window end and the fetch itself is included.
func (g *GitHubGateway) FetchMergedPRs(ctx context.Context, org, repo string, window domain.Window) ([]domain.ActivityItem, error) {
	query := fmt.Sprintf("repo:%s/%s is:pr is:merged merged:>=%s", org, repo, window.StartDate())
	return g.searchIssues(ctx, repo, query, domain.MergedPR)
}

// FetchClosedIssues returns the issues closed in org/repo since the
// window's lower bound.
func (g *GitHubGateway) FetchClosedIssues(ctx context.Context, org, repo string, window domain.Window) ([]domain.ActivityItem, error) {
	query := fmt.Sprintf("repo:%s/%s is:issue is:closed closed:>=%s", org, repo, window.StartDate())
	return g.searchIssues(ctx, repo, query, domain.ClosedIssue)
}

func (g *GitHubGateway) searchIssues(ctx context.Context, repo, query string, kind domain.ActivityKind) ([]domain.ActivityItem, error) {
	g.logger.Printf("Searching: %s", query)
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var items []domain.ActivityItem
	for {
		result, resp, err := g.restClient.Search.Issues(ctx, query, opts)
		if err != nil {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			return nil, &FetchError{Repo: repo, Status: status, Err: err}
		}
		for _, issue := range result.Issues {
			item := domain.ActivityItem{
				Repo:   repo,
				Kind:   kind,
				URL:    issue.GetHTMLURL(),
				Number: issue.GetNumber(),
				Title:  issue.GetTitle(),
			}
			for _, label := range issue.Labels {
				item.Labels = append(item.Labels, label.GetName())
			}
			items = append(items, item)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of search results...")
	}
	return items, nil
}

// FetchReviewQueue returns the open non-draft pull requests in org/repo
// that still require a review.
func (g *GitHubGateway) FetchReviewQueue(ctx context.Context, org, repo string) (ReviewQueue, error) {
	query := fmt.Sprintf("repo:%s/%s is:pr is:open draft:false review:required", org, repo)
	g.logger.Printf("Searching: %s", query)

	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"cursor": (*githubv4.String)(nil),
	}

	queue := ReviewQueue{Repo: repo}
	for {
		var q reviewQueueQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return ReviewQueue{}, &FetchError{Repo: repo, Err: err}
		}
		for _, edge := range q.Search.Edges {
			if edge.Node.Typename != "PullRequest" {
				continue
			}
			queue.OpenedAt = append(queue.OpenedAt, edge.Node.PullRequest.CreatedAt.Time)
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of review queue results...")
	}
	return queue, nil
}
