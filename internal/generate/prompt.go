package generate

import (
	"fmt"
	"strings"
)

const systemPrompt = `You design short educational mini-games for a children's learning app.

Rules:
- Write for the stated age group: "kids" are 6 to 11 years old, "teens" are 12 to 16.
- Use simple, warm, encouraging language. No trick questions, no scary or violent content.
- Every challenge must be answerable from everyday knowledge of the topic.
- Produce exactly the requested number of challenges, each with a different prompt.
- single: 3 or 4 options, exactly one with correct=true.
- set: 3 to 6 options, at least two with correct=true. The child must pick every correct one.
- order: 3 to 5 options, give each a distinct position from 1 to the number of options. Set correct=false.
- text: a reflective question with no right answer. Leave options empty and set min_text_length (about 20 for kids, 40 for teens).
- For variants other than text set min_text_length to 0. For variants other than order set position to 0.
- The explanation is shown after the child answers: one or two kind sentences saying why.
- Choose pass_percent between 50 and 80.`

func buildUserMessage(in Input, avoid []string, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Learning pillar: %s\n", in.Pillar.DisplayName())
	fmt.Fprintf(&b, "Age group: %s\n", in.AgeGroup)
	fmt.Fprintf(&b, "Number of challenges: %d\n", in.Count)

	variants := allowedVariants(in)
	fmt.Fprintf(&b, "Allowed variants: %s\n", joinVariants(variants))
	if len(variants) > 1 && in.Count >= len(variants) {
		b.WriteString("Use a mix of the allowed variants.\n")
	}

	b.WriteString("\nQuestions that already exist in this pillar (do not repeat them):\n")
	b.WriteString(numbered(avoid))

	if feedback != "" {
		b.WriteString("\n\nYour previous attempt was rejected: ")
		b.WriteString(feedback)
		b.WriteString("\nFix this problem in the new game.")
	}
	return b.String()
}

func numbered(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}
