package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscope/internal/model"
	"github.com/nhle/mailscope/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	configPath string
	cfg        *model.AppConfig
	st         *store.SQLiteStore
)

var rootCmd = &cobra.Command{
	Use:     "mailscope",
	Short:   "mailscope - sync, thread, and read your mail locally",
	Long:    "Mailscope ingests account mail over IMAP, threads conversations, and renders message bodies safely in the terminal.",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init/help/version work without config or store.
		switch cmd.Name() {
		case "init", "help", "version":
			return nil
		}

		path := configPath
		if path == "" {
			path = model.DefaultConfigPath()
		}

		var err error
		cfg, err = model.LoadConfig(path)
		if err != nil {
			return err
		}

		st, err = store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open message store: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			st.Close()
		}
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "", "path to config file",
	)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(debugMessageCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
