package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openverse-dev/weekly-digest/internal/config"
	"github.com/openverse-dev/weekly-digest/internal/domain"
	"github.com/openverse-dev/weekly-digest/internal/gateway"
	"github.com/openverse-dev/weekly-digest/internal/usecase"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Publishes the weekly activity digest to the project blog",
	Long: `Collects the merged pull requests and closed issues of the past
seven days across all tracked repositories, renders them as an HTML
report, and publishes the report as a new post on the project blog.
Exits non-zero on missing credentials, a failed fetch, or a rejected
publish; a partial digest is never posted.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		configPath, _ := cmd.Flags().GetString("config")
		groupByStack, _ := cmd.Flags().GetBool("group-by-stack")

		runner := newDigestRunner()
		if err := runner.run(context.Background(), logger, configPath, groupByStack); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// digestRunner holds the collaborators the digest command wires
// together. The network edges and the clock are fields so tests can
// substitute them.
type digestRunner struct {
	getenv       func(string) string
	now          func() time.Time
	newFetcher   func(token string, logger *log.Logger) (gateway.Fetcher, error)
	newPublisher func(site, username, password string, logger *log.Logger) gateway.Publisher
	out          io.Writer
	errOut       io.Writer
}

func newDigestRunner() *digestRunner {
	return &digestRunner{
		getenv:     os.Getenv,
		now:        time.Now,
		newFetcher: gateway.NewGitHubGateway,
		newPublisher: func(site, username, password string, logger *log.Logger) gateway.Publisher {
			return gateway.NewWordPressGateway(site, username, password, logger)
		},
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

func (r *digestRunner) run(ctx context.Context, logger *log.Logger, configPath string, groupByStack bool) error {
	token := r.getenv("ACCESS_TOKEN")
	username := r.getenv("MAKE_USERNAME")
	password := r.getenv("MAKE_PASSWORD")

	// Every credential is checked before any network call is made.
	for _, cred := range []struct{ name, value string }{
		{"ACCESS_TOKEN", token},
		{"MAKE_USERNAME", username},
		{"MAKE_PASSWORD", password},
	} {
		if cred.value == "" {
			return fmt.Errorf("%s environment variable is not set", cred.name)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	window := domain.NewWindow(r.now())
	logger.Printf("Digest window: %s - %s", window.StartDate(), window.EndDate())

	fetcher, err := r.newFetcher(token, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	digest := usecase.NewDigest(fetcher, logger)

	activities, err := digest.Collect(ctx, cfg.Org, cfg.Repos, window)
	if err != nil {
		return fmt.Errorf("failed to collect activity: %w", err)
	}

	var content string
	if groupByStack {
		content = usecase.RenderGroups(cfg.Org, usecase.GroupByStack(usecase.Flatten(activities)))
	} else {
		content = usecase.RenderRepos(cfg.Org, activities)
	}

	post := usecase.BuildPost(window, content)
	publisher := r.newPublisher(cfg.Site, username, password, logger)
	id, body, err := publisher.Publish(ctx, post)
	if err != nil {
		// The rendered digest is dumped so a failed publish does not lose it.
		fmt.Fprintf(r.errOut, "Rendered content was:\n%s\n", content)
		return fmt.Errorf("failed to publish digest: %w", err)
	}

	// The CMS response is written either way, failure or success.
	fmt.Fprintf(r.errOut, "CMS response: %s\n", body)
	fmt.Fprintf(r.out, "Published digest post %d (%s)\n", id, post.Slug)
	return nil
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().String("config", "repos.yml", "Path to the tracked-repository descriptor")
	digestCmd.Flags().Bool("group-by-stack", false, "Group activity by stack: label instead of by repository")
}
