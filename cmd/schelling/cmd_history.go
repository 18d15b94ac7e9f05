package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd)
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("--db is required for history")
			}
			defer db.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			rows, err := db.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}

			for _, row := range rows {
				when := row.CreatedAt
				if t, err := time.Parse(time.RFC3339, row.CreatedAt); err == nil {
					when = humanize.Time(t)
				}
				status := "incomplete"
				if row.Completed {
					status = fmt.Sprintf("%s ticks", humanize.Comma(int64(row.Ticks)))
				}
				fmt.Printf("%s  %s  %dx%d %s/%s/%s seed=%d  %s\n",
					row.ID, when,
					row.Width, row.Height,
					row.Dynamics, row.Utility, row.Updater,
					row.Seed, status,
				)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 30, "Maximum number of runs to list")
	return cmd
}
