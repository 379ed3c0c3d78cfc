package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/rewards"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the available games",
	RunE: func(cmd *cobra.Command, args []string) error {
		pillar, _ := cmd.Flags().GetString("pillar")
		if pillar != "" && !catalog.Pillar(pillar).Valid() {
			return fmt.Errorf("unknown pillar %q (want one of %s)", pillar, pillarList())
		}

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		env, err := rt.env()
		if err != nil {
			return err
		}
		w, err := env.Rewards.Wallet(cmd.Context())
		if err != nil {
			return fmt.Errorf("load wallet: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, p := range rt.registry.Pillars() {
			if pillar != "" && string(p) != pillar {
				continue
			}
			fmt.Fprintln(out, p.DisplayName())
			fmt.Fprintln(out, strings.Repeat("─", 72))
			for _, g := range rt.registry.ByPillar(p) {
				fmt.Fprintf(out, "  %-20s  %-30s  %3d  %s\n",
					g.ID, truncate(g.Title, 30), len(g.Challenges), gameStatus(rt.registry, w, g))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func gameStatus(reg *catalog.Registry, w rewards.Wallet, g catalog.Game) string {
	switch {
	case w.HasPassed(g.ID):
		return "✓ passed"
	case w.Playable(g.ID, reg.IsEntry(g.ID)):
		return "open"
	}
	if src, ok := reg.UnlockedBy(g.ID); ok {
		return "locked (pass " + src.ID + ")"
	}
	return "locked"
}

func pillarList() string {
	names := make([]string, 0, len(catalog.AllPillars()))
	for _, p := range catalog.AllPillars() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func init() {
	gamesCmd.Flags().StringP("pillar", "p", "", "Only list games of this pillar")
}
