// Package reply generates the assistant's next message for a turn outcome.
package reply

import (
	"context"
	"fmt"
	"strings"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
)

// textModel is the slice of the model client reply generation needs.
type textModel interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

type Generator struct {
	model textModel
}

func New(model textModel) *Generator {
	return &Generator{model: model}
}

const replySystem = `You are a friendly calendar assistant. Write one short
conversational reply to the user. No markdown, no lists, no preamble.`

// fieldPhrases turns stable field identifiers into things a user can answer.
var fieldPhrases = map[string]string{
	domain.FieldTitle:         "which meeting you mean (its title)",
	domain.FieldAttendeeEmail: "an email address for the attendee you mentioned",
	domain.FieldDate:          "which day the meeting should be on",
	domain.FieldTime:          "what time the meeting should start",
}

func (g *Generator) SuccessReply(ctx context.Context, summary string, history []ports.Message) (string, error) {
	prompt := fmt.Sprintf("%sThe update succeeded: %s\nTell the user it's done.",
		historyPreamble(history), summary)
	return g.model.GenerateText(ctx, replySystem, prompt)
}

func (g *Generator) MissingFieldsReply(ctx context.Context, report domain.MissingFieldsReport, history []ports.Message) (string, error) {
	prompt := fmt.Sprintf("%sYou still need: %s.\nAsk the user for this, briefly.",
		historyPreamble(history), describe(report))
	return g.model.GenerateText(ctx, replySystem, prompt)
}

// describe flattens the report into a human-readable needs list.
func describe(report domain.MissingFieldsReport) string {
	var needs []string
	var walk func(reqs []domain.FieldRequirement)
	walk = func(reqs []domain.FieldRequirement) {
		for _, req := range reqs {
			if req.Field != "" {
				if phrase, ok := fieldPhrases[req.Field]; ok {
					needs = append(needs, phrase)
				} else {
					needs = append(needs, req.Field)
				}
			}
			walk(req.And)
			walk(req.Or)
		}
	}
	walk(report.Required)
	walk(report.DateTime)
	if len(needs) == 0 {
		return "more details about the change"
	}
	return strings.Join(needs, "; ")
}

func historyPreamble(history []ports.Message) string {
	if len(history) == 0 {
		return ""
	}
	// Only the tail matters for tone continuity.
	start := len(history) - 6
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, msg := range history[start:] {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

var _ ports.ReplyGenerator = (*Generator)(nil)
