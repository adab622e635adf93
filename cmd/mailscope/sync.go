package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscope/internal/credential"
	"github.com/nhle/mailscope/internal/model"
	"github.com/nhle/mailscope/internal/source"
	"github.com/nhle/mailscope/internal/source/email"
	"github.com/nhle/mailscope/internal/sync"
)

var (
	syncAccount string
	syncFolder  string
	syncLimit   int
	syncPage    int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and ingest new mail for configured accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts := cfg.Accounts
		if syncAccount != "" {
			account, ok := cfg.Account(syncAccount)
			if !ok {
				return fmt.Errorf("no account named %q in config", syncAccount)
			}
			accounts = []model.AccountConfig{account}
		}
		if len(accounts) == 0 {
			return fmt.Errorf("no accounts configured — run 'mailscope init' first")
		}

		syncer := sync.New(st, openIMAPSource)

		results, err := syncer.SyncAll(cmd.Context(), accounts, source.FetchOptions{
			Folder: syncFolder,
			Limit:  syncLimit,
			Page:   syncPage,
		})
		for _, r := range results {
			fmt.Printf("%s: fetched %d, ingested %d, skipped %d\n",
				r.Account, r.Fetched, r.Ingested, r.Skipped)
		}
		return err
	},
}

// openIMAPSource builds the IMAP source for an account, resolving the
// password from the config or the OS keyring.
func openIMAPSource(account model.AccountConfig) (source.Source, error) {
	password, err := credential.IMAPPassword(account)
	if err != nil {
		return nil, err
	}

	return email.NewClient(
		account.Name,
		account.IMAP.Host, account.IMAP.Port,
		account.IMAP.Login, password,
		account.IMAP.TLS,
	), nil
}

func init() {
	syncCmd.Flags().StringVar(&syncAccount, "account", "", "sync a single account by name")
	syncCmd.Flags().StringVar(&syncFolder, "folder", "INBOX", "mailbox folder to sync")
	syncCmd.Flags().IntVar(&syncLimit, "limit", 10, "messages to fetch per account")
	syncCmd.Flags().IntVar(&syncPage, "page", 0, "fetch window, newest first")
}
