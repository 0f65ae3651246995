package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nwrenger/schiller-db/internal/config"
	"github.com/nwrenger/schiller-db/internal/storage"
)

func newStatsCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print record counts for the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("stats does not accept positional arguments")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, _, err := storage.OpenStore(cfg.Store.Path)
			if err != nil {
				return mapCommandError(fmt.Errorf("open store at %q: %w", cfg.Store.Path, err))
			}
			defer func() { _ = store.Close() }()

			stats, err := storage.FetchStats(cmd.Context(), store)
			if err != nil {
				return mapCommandError(err)
			}

			_, err = fmt.Fprintf(out,
				"accounts=%d flagged=%d attendance=%d disciplinary=%d employment=%d\n",
				stats.Accounts, stats.Flagged, stats.Attendance, stats.Disciplinary, stats.Employment,
			)
			return err
		},
	}
}
