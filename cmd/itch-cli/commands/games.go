package commands

import (
	"fmt"
	"strings"

	"github.com/maltedev/itch-scraper/internal/scraper"
	"github.com/spf13/cobra"
)

func newListCommand(opts *options) *cobra.Command {
	names := make([]string, len(scraper.Categories))
	for i, c := range scraper.Categories {
		names[i] = string(c)
	}

	cmd := &cobra.Command{
		Use:       "list <category>",
		Short:     "List games of a curated category",
		Long:      "List games of a curated category: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			category := scraper.Category(args[0])
			if !category.Valid() {
				return fmt.Errorf("unknown category %q (want one of %s)", args[0], strings.Join(names, ", "))
			}

			page, err := opts.provider(cmd.ErrOrStderr()).FetchByCategory(cmd.Context(), category, opts.page)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page number")

	return cmd
}

func newSearchCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search games by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := opts.provider(cmd.ErrOrStderr()).Search(cmd.Context(), strings.Join(args, " "), opts.page)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page number")

	return cmd
}

func newInfoCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <id-or-url>",
		Short: "Show the full details of one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := opts.provider(cmd.ErrOrStderr()).FetchGameInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}
