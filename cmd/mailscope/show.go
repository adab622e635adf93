package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscope/internal/render"
)

var showText bool

var showCmd = &cobra.Command{
	Use:   "show <message-id>",
	Short: "Print a stored message body, sanitized for display",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, html, err := st.GetBody(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if showText || html == "" {
			fmt.Println(text)
			return nil
		}

		fmt.Println(render.Safe(html, text))
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showText, "text", false, "print the plain-text body instead of sanitized HTML")
}
