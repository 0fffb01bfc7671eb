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
	"github.com/openverse-dev/weekly-digest/internal/gateway"
	"github.com/openverse-dev/weekly-digest/internal/usecase"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Posts a review-backlog reminder to the chat channel",
	Long: `Counts the open, non-draft pull requests still waiting for a
review in each tracked repository and posts a summary (count and median
age) to the configured chat webhook.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags)
		if verbose {
			logger.SetOutput(os.Stderr)
		}

		configPath, _ := cmd.Flags().GetString("config")

		runner := newRemindRunner()
		if err := runner.run(context.Background(), logger, configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// remindRunner holds the collaborators the remind command wires
// together, substitutable in tests like digestRunner's.
type remindRunner struct {
	getenv      func(string) string
	now         func() time.Time
	newFetcher  func(token string, logger *log.Logger) (gateway.Fetcher, error)
	newNotifier func(webhookURL string, logger *log.Logger) gateway.Notifier
	out         io.Writer
}

func newRemindRunner() *remindRunner {
	return &remindRunner{
		getenv:     os.Getenv,
		now:        time.Now,
		newFetcher: gateway.NewGitHubGateway,
		newNotifier: func(webhookURL string, logger *log.Logger) gateway.Notifier {
			return gateway.NewSlackGateway(webhookURL, logger)
		},
		out: os.Stdout,
	}
}

func (r *remindRunner) run(ctx context.Context, logger *log.Logger, configPath string) error {
	token := r.getenv("ACCESS_TOKEN")
	webhookURL := r.getenv("SLACK_WEBHOOK_URL")

	for _, cred := range []struct{ name, value string }{
		{"ACCESS_TOKEN", token},
		{"SLACK_WEBHOOK_URL", webhookURL},
	} {
		if cred.value == "" {
			return fmt.Errorf("%s environment variable is not set", cred.name)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fetcher, err := r.newFetcher(token, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	reminder := usecase.NewReminder(fetcher, logger)

	backlogs, err := reminder.Summarize(ctx, cfg.Org, cfg.Repos, r.now())
	if err != nil {
		return fmt.Errorf("failed to summarize review queues: %w", err)
	}

	notifier := r.newNotifier(webhookURL, logger)
	if err := notifier.Notify(ctx, usecase.FormatMessage(cfg.Org, backlogs)); err != nil {
		return fmt.Errorf("failed to post reminder: %w", err)
	}

	fmt.Fprintln(r.out, "Posted review reminder.")
	return nil
}

func init() {
	rootCmd.AddCommand(remindCmd)
	remindCmd.Flags().String("config", "repos.yml", "Path to the tracked-repository descriptor")
}
