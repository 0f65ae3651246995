package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"github.com/nwrenger/schiller-db/internal/config"
	"github.com/nwrenger/schiller-db/internal/storage"
)

func newUserCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage store logins",
	}
	cmd.AddCommand(newUserAddCommand(out, loadConfig))
	cmd.AddCommand(newUserPasswdCommand(out, loadConfig))
	cmd.AddCommand(newUserRemoveCommand(out, loadConfig))
	cmd.AddCommand(newUserListCommand(out, loadConfig))
	return cmd
}

func newUserAddCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	var account, attendance, disciplinary string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a login; the password is read from the configured environment variable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("add takes exactly one login name")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			permsAccount, err := parsePermission(account)
			if err != nil {
				return err
			}
			permsAttendance, err := parsePermission(attendance)
			if err != nil {
				return err
			}
			permsDisciplinary, err := parsePermission(disciplinary)
			if err != nil {
				return err
			}

			rawPassword := os.Getenv(cfg.Bootstrap.PasswordEnv)
			if rawPassword == "" {
				return usageErrorf("no password: set %s", cfg.Bootstrap.PasswordEnv)
			}
			password := memguard.NewBufferFromBytes([]byte(rawPassword))
			defer password.Destroy()

			store, _, err := storage.OpenStore(cfg.Store.Path)
			if err != nil {
				return mapCommandError(fmt.Errorf("open store at %q: %w", cfg.Store.Path, err))
			}
			defer func() { _ = store.Close() }()

			err = store.Credentials.Add(cmd.Context(), storage.NewCredential{
				User:               args[0],
				Password:           password.String(),
				AccessAccount:      permsAccount,
				AccessAttendance:   permsAttendance,
				AccessDisciplinary: permsDisciplinary,
			})
			if err != nil {
				return mapCommandError(fmt.Errorf("add login %q: %w", args[0], err))
			}

			_, err = fmt.Fprintf(out, "added login %q\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&account, "account", "none", "Permission on account records (none, read-only, write)")
	cmd.Flags().StringVar(&attendance, "attendance", "none", "Permission on attendance and employment records")
	cmd.Flags().StringVar(&disciplinary, "disciplinary", "none", "Permission on disciplinary records")
	return cmd
}

func newUserPasswdCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <name>",
		Short: "Change a login's password from the configured environment variable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("passwd takes exactly one login name")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rawPassword := os.Getenv(cfg.Bootstrap.PasswordEnv)
			if rawPassword == "" {
				return usageErrorf("no password: set %s", cfg.Bootstrap.PasswordEnv)
			}
			password := memguard.NewBufferFromBytes([]byte(rawPassword))
			defer password.Destroy()

			store, _, err := storage.OpenStore(cfg.Store.Path)
			if err != nil {
				return mapCommandError(fmt.Errorf("open store at %q: %w", cfg.Store.Path, err))
			}
			defer func() { _ = store.Close() }()

			if err := store.Credentials.SetPassword(cmd.Context(), args[0], password.String()); err != nil {
				return mapCommandError(fmt.Errorf("change password of %q: %w", args[0], err))
			}

			_, err = fmt.Fprintf(out, "changed password of %q\n", args[0])
			return err
		},
	}
}

func newUserRemoveCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("rm takes exactly one login name")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// The administrative login stays; without it the store can
			// no longer be managed.
			name := strings.TrimSpace(args[0])
			if admin := os.Getenv(cfg.Bootstrap.UserEnv); admin != "" && name == admin {
				return usageErrorf("the administrative login %q cannot be deleted", name)
			}

			store, _, err := storage.OpenStore(cfg.Store.Path)
			if err != nil {
				return mapCommandError(fmt.Errorf("open store at %q: %w", cfg.Store.Path, err))
			}
			defer func() { _ = store.Close() }()

			if err := store.Credentials.Delete(cmd.Context(), name); err != nil {
				return mapCommandError(fmt.Errorf("delete login %q: %w", name, err))
			}

			_, err = fmt.Fprintf(out, "deleted login %q\n", name)
			return err
		},
	}
}

func newUserListCommand(out io.Writer, loadConfig func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List login names",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("list does not accept positional arguments")
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

			users, err := store.Credentials.Users(cmd.Context())
			if err != nil {
				return mapCommandError(err)
			}
			for _, user := range users {
				if _, err := fmt.Fprintln(out, user); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func parsePermission(raw string) (storage.Permission, error) {
	switch raw {
	case "none", "":
		return storage.PermissionNone, nil
	case "read-only", "read":
		return storage.PermissionReadOnly, nil
	case "write":
		return storage.PermissionWrite, nil
	default:
		return storage.PermissionNone, usageErrorf("unknown permission %q: want none, read-only or write", raw)
	}
}
