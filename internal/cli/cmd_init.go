package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/nwrenger/schiller-db/internal/config"
	"github.com/nwrenger/schiller-db/internal/log"
	"github.com/nwrenger/schiller-db/internal/storage"
)

func newInitCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new store and seed the administrative login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("init does not accept positional arguments")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			logger, closeLog, err := log.New(cfg.Logging.Level, cfg.Logging.File)
			if err != nil {
				return mapCommandError(err)
			}
			defer func() { _ = closeLog() }()

			user := os.Getenv(cfg.Bootstrap.UserEnv)
			rawPassword := os.Getenv(cfg.Bootstrap.PasswordEnv)
			if user == "" || rawPassword == "" {
				return usageErrorf("bootstrap credential missing: set %s and %s", cfg.Bootstrap.UserEnv, cfg.Bootstrap.PasswordEnv)
			}

			password := memguard.NewBufferFromBytes([]byte(rawPassword))
			defer password.Destroy()

			store, err := storage.CreateStore(cfg.Store.Path)
			if err != nil {
				return mapCommandError(fmt.Errorf("create store at %q: %w", cfg.Store.Path, err))
			}
			defer func() { _ = store.Close() }()

			err = store.Credentials.Add(cmd.Context(), storage.NewCredential{
				User:               user,
				Password:           password.String(),
				AccessAccount:      storage.PermissionWrite,
				AccessAttendance:   storage.PermissionWrite,
				AccessDisciplinary: storage.PermissionWrite,
			})
			if err != nil {
				return mapCommandError(fmt.Errorf("seed administrative login: %w", err))
			}

			logger.Info("store initialized", "path", cfg.Store.Path, "user", user)
			_, err = fmt.Fprintf(out, "created %s with administrative login %q\n", cfg.Store.Path, user)
			return err
		},
	}
}
