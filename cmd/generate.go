package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/kidquest/internal/catalog"
	"github.com/abhisek/kidquest/internal/engine"
	"github.com/abhisek/kidquest/internal/generate"
	"github.com/abhisek/kidquest/internal/llm"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a new game with an LLM",
	Long: `Ask the configured LLM provider for a new game on a topic and save it as a
game file in the content directory. The game is validated exactly like
hand-written content before it is written; existing files are never
overwritten.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("topic", "", "What the game is about (required)")
	f.StringP("pillar", "p", "", "Pillar the game belongs to (required)")
	f.String("age", "kids", "Age group: kids or teens")
	f.IntP("count", "n", 5, "Number of challenges")
	f.StringSlice("variant", nil, "Allowed challenge variants (single, set, order, text); repeatable")
	f.String("id", "", "Game id (default: next free id for the pillar and age group)")
	f.String("next", "", "Game unlocked by passing the new one")
	f.StringP("out", "o", "", "Directory to write the game file to (default: the content dir)")
	f.Bool("dry-run", false, "Print the game instead of saving it")
	_ = generateCmd.MarkFlagRequired("topic")
	_ = generateCmd.MarkFlagRequired("pillar")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	topic, _ := f.GetString("topic")
	pillar, _ := f.GetString("pillar")
	age, _ := f.GetString("age")
	count, _ := f.GetInt("count")
	variants, _ := f.GetStringSlice("variant")
	id, _ := f.GetString("id")
	next, _ := f.GetString("next")
	outDir, _ := f.GetString("out")
	dryRun, _ := f.GetBool("dry-run")

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if outDir == "" {
		outDir = rt.cfg.ContentDir
	}
	if outDir == "" && !dryRun {
		return errors.New("no output directory: pass --out or set KIDQUEST_CONTENT_DIR")
	}

	in := generate.Input{
		Topic:    topic,
		Pillar:   catalog.Pillar(pillar),
		AgeGroup: age,
		Count:    count,
		GameID:   id,
		Next:     next,
	}
	for _, v := range variants {
		in.Variants = append(in.Variants, engine.Variant(v))
	}

	llmCfg, err := llm.Resolve()
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w", err)
	}
	st, err := rt.openStore()
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(cmd.Context(), llmCfg, st.EventRepo(), rt.logger)
	if err != nil {
		return err
	}

	genCfg := generate.DefaultConfig()
	genCfg.Timeout = llmCfg.Timeout
	svc := generate.NewService(provider, rt.registry, genCfg, rt.logger)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Generating %d challenges about %q with %s (%s)...\n",
		count, topic, provider.Name(), provider.ModelID())
	g, err := svc.Generate(cmd.Context(), in)
	if err != nil {
		return err
	}

	if dryRun {
		data, err := catalog.Encode(g)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	path, err := generate.Save(outDir, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %s (%s, %d challenges) to %s\n", g.ID, g.Title, len(g.Challenges), path)
	return nil
}
