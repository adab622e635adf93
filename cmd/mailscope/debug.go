package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscope/internal/parser"
)

var debugMessageCmd = &cobra.Command{
	Use:   "debug-message <message-id>",
	Short: "Dump the stored record and reparsed raw form of a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := st.FindByIdentity(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		record, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding record: %w", err)
		}
		fmt.Println(string(record))

		raw, err := st.GetRaw(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		parsed, err := parser.Parse(raw)
		if err != nil {
			return fmt.Errorf("reparsing raw message: %w", err)
		}

		fmt.Println("headers:")
		for key, value := range parsed.Headers {
			fmt.Printf("  %s: %s\n", key, value)
		}
		if parsed.TextBody != nil {
			fmt.Println("text body:")
			fmt.Println(*parsed.TextBody)
		}
		if parsed.HTMLBody != nil {
			fmt.Println("html body:")
			fmt.Println(*parsed.HTMLBody)
		}
		return nil
	},
}
