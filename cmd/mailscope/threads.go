package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/mailscope/internal/display"
	"github.com/nhle/mailscope/internal/store"
	"github.com/nhle/mailscope/internal/thread"
)

var (
	threadsQuery string
	threadsLimit int
)

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List stored conversations, threaded and bucketed by date",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := store.Filter{}
		if threadsQuery != "" {
			filter.Query = &threadsQuery
		}

		limit := threadsLimit
		if limit <= 0 {
			limit = cfg.Display.PageSize
		}

		messages, err := st.ListThreaded(cmd.Context(), filter, limit)
		if err != nil {
			return err
		}
		if len(messages) == 0 {
			fmt.Println("no conversations found")
			return nil
		}

		now := time.Now()
		buckets := thread.Assemble(messages, now)
		fmt.Print(display.Buckets(buckets, now))
		return nil
	},
}

func init() {
	threadsCmd.Flags().StringVar(&threadsQuery, "query", "", "free-text filter")
	threadsCmd.Flags().IntVar(&threadsLimit, "limit", 0, "max conversations to list")
}
