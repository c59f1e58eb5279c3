// Package promptbuilder constructs the text prompt handed to an agent for
// a single file-fix attempt, folding in prior-attempt feedback on retries.
package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/stomper/stomper/engine"
)

// Default implements engine.PromptBuilder, producing a deterministic,
// markdown-structured prompt from a file's findings and any feedback left
// over from a previous attempt.
type Default struct{}

// Build satisfies engine.PromptBuilder.
func (Default) Build(findings []engine.Finding, filePath string, feedback *engine.Feedback) string {
	var b strings.Builder

	b.WriteString("You are a code-quality fixer agent. Your goal is to resolve static-analysis findings in a single file.\n\n")

	b.WriteString("## Target File\n\n")
	b.WriteString(fmt.Sprintf("- **Path:** %s\n\n", filePath))

	b.WriteString("## Findings\n\n")
	for _, f := range findings {
		writeFinding(&b, f)
	}

	if feedback != nil {
		writeFeedback(&b, feedback)
	}

	b.WriteString("## Instructions\n\n")
	b.WriteString("1. **Investigate** the findings above by reading the file and understanding the root cause of each.\n")
	b.WriteString("2. **Fix** every finding with the minimal change needed. Do not change unrelated code.\n")
	b.WriteString("3. Do not suppress or disable the lint/check instead of fixing the underlying issue.\n")
	b.WriteString("4. Preserve the file's existing behavior and public API unless a finding requires otherwise.\n\n")

	b.WriteString("## Important Rules\n\n")
	b.WriteString("- Edit only " + filePath + "\n")
	b.WriteString("- Make minimal, focused changes\n")
	b.WriteString("- If a finding cannot be resolved safely, leave it and explain why in your final response\n")

	return b.String()
}

func writeFinding(b *strings.Builder, f engine.Finding) {
	b.WriteString(fmt.Sprintf("- **[%s/%s]** %s:%d:%d — %s\n",
		f.Tool, f.Code, f.FilePath, f.Line, f.Column, f.Message))
}

// writeFeedback renders the Feedback from a prior failed attempt: findings
// still remaining, any new findings the agent's own edit introduced, and an
// optional note from the verification tool (e.g. a parse failure).
func writeFeedback(b *strings.Builder, feedback *engine.Feedback) {
	b.WriteString("## Previous Attempt Feedback\n\n")
	b.WriteString("Your last attempt did not fully resolve this file.\n\n")

	if len(feedback.Remaining) > 0 {
		b.WriteString("### Still Unresolved\n\n")
		for _, f := range feedback.Remaining {
			writeFinding(b, f)
		}
	}
	if len(feedback.New) > 0 {
		b.WriteString("\n### New Findings Introduced By Your Edit\n\n")
		for _, f := range feedback.New {
			writeFinding(b, f)
		}
	}
	if feedback.ToolNote != "" {
		b.WriteString(fmt.Sprintf("\n### Note\n\n%s\n", feedback.ToolNote))
	}
	b.WriteString("\n")
}
