package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/backlog/internal/adapter"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(
		a.configShowCommand(),
		a.configSetKeyCommand(),
		a.configSetUserCommand(),
		a.configPathCommand(),
	)
	return cmd
}

func (a *app) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.cfg
			cfg.Source.APIKey = redact(cfg.Source.APIKey)
			return printJSON(a.out, cfg)
		},
	}
}

func (a *app) configSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key [key]",
		Short: "Save the Steam Web API key",
		Long: `Set-key saves the Steam Web API key used by sync. Without an argument the
key is read from the terminal without echo.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = strings.TrimSpace(args[0])
			} else {
				if !a.interactive() {
					return errors.New("pass the key as an argument when not running in a terminal")
				}
				var err error
				if key, err = a.readSecret("API key: "); err != nil {
					return err
				}
			}
			if key == "" {
				return errors.New("API key is empty")
			}

			if err := adapter.SaveAPIKey(a.cfg, key, a.configFile); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintln(a.out, "✓ API key saved")
			return nil
		},
	}
}

func (a *app) configSetUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-user <steamid64>",
		Short: "Save the default Steam account for sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Source.UserID = strings.TrimSpace(args[0])
			if err := adapter.SaveConfig(a.cfg, a.configFile); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(a.out, "✓ Default user set to %s\n", a.cfg.Source.UserID)
			return nil
		},
	}
}

func (a *app) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			path := a.configFile
			if path == "" {
				path = adapter.DefaultConfigFile()
			}
			fmt.Fprintln(a.out, path)
		},
	}
}

// redact keeps the last four characters of a secret
func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
