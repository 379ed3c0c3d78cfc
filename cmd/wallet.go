package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/kidquest/internal/rewards"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show coins, XP, badges and unlocked games",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		p := message.NewPrinter(language.English)
		out := cmd.OutOrStdout()
		p.Fprintf(out, "Coins:   %d\n", w.Coins)
		p.Fprintf(out, "XP:      %d\n", w.XP)
		p.Fprintf(out, "Badges:  %d\n", w.BadgeTotal)
		for _, r := range rewards.AllRarities() {
			p.Fprintf(out, "  %-10s %d\n", r.DisplayName(), w.Badges[r])
		}

		titles := make([]string, 0, len(w.Unlocked))
		for _, id := range w.Unlocked {
			if g, ok := rt.registry.Get(id); ok {
				titles = append(titles, g.Title)
			} else {
				titles = append(titles, id)
			}
		}
		if len(titles) > 0 {
			fmt.Fprintf(out, "Unlocked: %s\n", strings.Join(titles, ", "))
		}
		return nil
	},
}
