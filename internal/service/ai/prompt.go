package ai

import (
	"strings"
	"time"
)

// newsroomRules shape every answer NewsMate gives.
var newsroomRules = []string{
	"Answer as NewsMate, a concise assistant for current news and background explainers.",
	"Say when you are unsure instead of inventing facts, dates or quotes.",
	"Prefer short paragraphs and bullet lists; use markdown, the client renders it.",
	"Keep follow-up questions in the context of the earlier turns.",
}

// buildSystemPrompt renders the system message for a turn.
func buildSystemPrompt(now time.Time) string {
	var builder strings.Builder
	builder.WriteString("You are NewsMate.\n")
	builder.WriteString("Today is ")
	builder.WriteString(now.UTC().Format("Monday, 2 January 2006"))
	builder.WriteString(".\n\nRules:\n")
	for _, rule := range newsroomRules {
		builder.WriteString("- ")
		builder.WriteString(rule)
		builder.WriteString("\n")
	}
	return builder.String()
}
