package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscope/internal/model"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = model.DefaultConfigPath()
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}

		starter := &model.AppConfig{
			Accounts: []model.AccountConfig{
				{
					Name:    "personal",
					Default: true,
					Email:   "you@example.com",
					IMAP: model.IMAPConfig{
						Host:  "imap.gmail.com",
						Port:  "993",
						Login: "you@example.com",
						TLS:   true,
					},
				},
			},
			Database: model.DatabaseConfig{Path: model.DefaultDatabasePath()},
			Display:  model.DisplayConfig{PageSize: 100},
		}

		if err := model.SaveConfig(path, starter); err != nil {
			return err
		}

		fmt.Printf("wrote starter config to %s\n", path)
		fmt.Println("edit the account settings, then run 'mailscope sync'")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
}
