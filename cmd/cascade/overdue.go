package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cascadehq/cascade/internal/config"
	"github.com/cascadehq/cascade/internal/db"
	"github.com/cascadehq/cascade/internal/overdue"
)

func newOverdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List tasks past their deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			gdb, err := db.Connect(cfg.DB)
			if err != nil {
				return err
			}

			dts, err := overdue.DepartmentTasks(gdb, 0)
			if err != nil {
				return err
			}
			mts, err := overdue.MemberTasks(gdb, 0)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintln(w, "KIND\tID\tTITLE\tSTATUS\tDEADLINE")
			for _, t := range dts {
				fmt.Fprintf(w, "department\t%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Deadline.Format("2006-01-02"))
			}
			for _, t := range mts {
				fmt.Fprintf(w, "member\t%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Deadline.Format("2006-01-02"))
			}
			if len(dts) == 0 && len(mts) == 0 {
				cmd.Println("No overdue tasks.")
			}
			return nil
		},
	}
}
