package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nwrenger/schiller-db/internal/config"
	"github.com/nwrenger/schiller-db/internal/log"
	"github.com/nwrenger/schiller-db/internal/storage"
)

func newImportCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	var file string
	var separator string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load accounts from a delimited roster file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("import does not accept positional arguments")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Import.Path
			}
			if file == "" {
				return usageErrorf("no roster file: pass --file or set import.path in the config")
			}
			if separator == "" {
				separator = cfg.Import.Separator
			}

			logger, closeLog, err := log.New(cfg.Logging.Level, cfg.Logging.File)
			if err != nil {
				return mapCommandError(err)
			}
			defer func() { _ = closeLog() }()

			store, _, err := storage.OpenStore(cfg.Store.Path)
			if err != nil {
				return mapCommandError(fmt.Errorf("open store at %q: %w", cfg.Store.Path, err))
			}
			defer func() { _ = store.Close() }()

			count, err := storage.ImportAccounts(cmd.Context(), store, file, separator)
			if err != nil {
				return mapCommandError(fmt.Errorf("import roster %q: %w", file, err))
			}

			logger.Info("roster imported", "file", file, "accounts", count)
			_, err = fmt.Fprintf(out, "imported %d accounts from %s\n", count, file)
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Roster file to import")
	cmd.Flags().StringVar(&separator, "separator", "", "Field separator (default from config)")
	return cmd
}
