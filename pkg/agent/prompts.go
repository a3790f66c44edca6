package agent

import (
	"fmt"
	"strings"
)

// FinishSentinel is the candidate name a supervisor picks to end its
// selection loop.
const FinishSentinel = "FINISH"

func renderCandidateList(candidates []Candidate) string {
	var b strings.Builder
	for _, c := range candidates {
		b.WriteString("- ")
		b.WriteString(c.Name)
		if c.Description != "" {
			b.WriteString(": ")
			b.WriteString(c.Description)
		}
		if len(c.Capabilities) > 0 {
			fmt.Fprintf(&b, " (capabilities: %s)", strings.Join(c.Capabilities, ", "))
		}
		if len(c.Tools) > 0 {
			fmt.Fprintf(&b, " (tools: %s)", strings.Join(c.Tools, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// selectionPrompt asks for a free-form pick; the parser tolerates either a
// bare name or a SELECTED: line.
func selectionPrompt(task string, candidates []Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task:\n%s\n\n", task)
	b.WriteString("Given the task above, decide who should act next. Select exactly one of:\n")
	b.WriteString(renderCandidateList(candidates))
	if hasFinish(candidates) {
		b.WriteString("\nSelect FINISH when no further work is needed.\n")
	}
	b.WriteString("\nRespond with the chosen name on a single line.")
	return b.String()
}

// structuredPrompt requests the SELECTED/REASONING format.
func structuredPrompt(task string, candidates []Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task:\n%s\n\n", task)
	b.WriteString("Given the task above, decide who should act next. Select exactly one of:\n")
	b.WriteString(renderCandidateList(candidates))
	if hasFinish(candidates) {
		b.WriteString("\nSelect FINISH when no further work is needed.\n")
	}
	b.WriteString("\nRespond in exactly this format:\n")
	b.WriteString("SELECTED: <name>\n")
	b.WriteString("REASONING: <why this choice is the single best next step>")
	return b.String()
}

// retryPrompt is the reformulated ask used with the structured numbered-menu
// invocation after a free-form answer could not be resolved.
func retryPrompt(task string) string {
	return fmt.Sprintf("Task:\n%s\n\nThe previous answer did not name a candidate. Pick the single best option for who should act next.", task)
}

func hasFinish(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.Name == FinishSentinel {
			return true
		}
	}
	return false
}
