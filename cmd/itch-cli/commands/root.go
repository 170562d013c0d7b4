// Package commands implements the itch-cli commands using Cobra.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/maltedev/itch-scraper/internal/config"
	"github.com/maltedev/itch-scraper/internal/httpclient"
	"github.com/maltedev/itch-scraper/internal/scraper"
	"github.com/spf13/cobra"
)

type options struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	verbose   bool
	page      int
}

// NewRootCommand builds the command tree. provider is created lazily from
// the persistent flags.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	env := config.LoadScraper()

	root := &cobra.Command{
		Use:           "itch-cli",
		Short:         "itch-cli fetches game listings and details from itch.io as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", env.BaseURL, "marketplace origin (env ITCH_BASE_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", env.Timeout, "request timeout (env HTTP_TIMEOUT)")
	root.PersistentFlags().StringVar(&opts.userAgent, "user-agent", env.UserAgent, "User-Agent header (env HTTP_USER_AGENT)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newListCommand(opts),
		newSearchCommand(opts),
		newInfoCommand(opts),
	)

	return root
}

func ExecuteContext(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) provider(errOut io.Writer) *scraper.ItchScraper {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	client := httpclient.New(httpclient.Options{
		BaseURL:   o.baseURL,
		Timeout:   o.timeout,
		UserAgent: o.userAgent,
	}, logger)

	return scraper.NewItchScraper(client, o.baseURL, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
