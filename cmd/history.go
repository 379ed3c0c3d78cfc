package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/kidquest/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently completed games",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		st, err := rt.openStore()
		if err != nil {
			return err
		}
		sessions, err := st.EventRepo().QuerySessionSummaries(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No games played yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-20s  %-4s  %-7s  %6s  %6s  %s\n",
			"Finished", "Game", "Pass", "Score", "Coins", "XP", "Time")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, s := range sessions {
			pass := "✗"
			if s.Passed {
				pass = "✓"
			}
			secs := s.DurationMs / 1000
			fmt.Fprintf(out, "%-16s  %-20s  %-4s  %-7s  %6d  %6d  %d:%02d\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				truncate(s.GameID, 20),
				pass,
				fmt.Sprintf("%d/%d", s.CorrectCount, s.Total),
				s.Reward,
				s.XP,
				secs/60, secs%60,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
}
