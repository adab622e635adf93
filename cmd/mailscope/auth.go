package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscope/internal/credential"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored account passwords",
}

var authSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store an account's IMAP password in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := cfg.Account(args[0]); !ok {
			return fmt.Errorf("no account named %q in config", args[0])
		}

		fmt.Printf("password for %s: ", args[0])
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(password, "\r\n")
		if password == "" {
			return fmt.Errorf("empty password")
		}

		if err := credential.SetIMAPPassword(args[0], password); err != nil {
			return err
		}
		fmt.Printf("stored password for %s\n", args[0])
		return nil
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Remove an account's IMAP password from the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.DeleteIMAPPassword(args[0]); err != nil {
			return err
		}
		fmt.Printf("removed password for %s\n", args[0])
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authDeleteCmd)
}
