package reply

import (
	"context"
	"strings"
	"testing"

	"meeting_assistant_backend/internal/meetingupdate/domain"
	"meeting_assistant_backend/internal/meetingupdate/ports"
)

type capturingModel struct {
	prompt string
}

func (m *capturingModel) GenerateText(_ context.Context, _, prompt string) (string, error) {
	m.prompt = prompt
	return "Sure thing!", nil
}

func TestDescribe(t *testing.T) {
	report := domain.MissingFieldsReport{
		Required: []domain.FieldRequirement{
			domain.Require(domain.FieldAttendeeEmail),
			domain.Require(domain.FieldTitle),
		},
		DateTime: []domain.FieldRequirement{domain.Require(domain.FieldTime)},
	}
	got := describe(report)
	for _, want := range []string{"email address", "which meeting", "what time"} {
		if !strings.Contains(got, want) {
			t.Errorf("describe() = %q, missing %q", got, want)
		}
	}
}

func TestDescribeWalksNestedRequirements(t *testing.T) {
	report := domain.MissingFieldsReport{
		DateTime: []domain.FieldRequirement{{
			And: []domain.FieldRequirement{
				domain.Require(domain.FieldDate),
				domain.Require(domain.FieldTime),
			},
		}},
	}
	got := describe(report)
	if !strings.Contains(got, "which day") || !strings.Contains(got, "what time") {
		t.Errorf("describe() = %q, want both nested fields", got)
	}
}

func TestDescribeUnknownFieldPassesThrough(t *testing.T) {
	got := describe(domain.MissingFieldsReport{
		Required: []domain.FieldRequirement{domain.Require("something.odd")},
	})
	if got != "something.odd" {
		t.Errorf("describe() = %q", got)
	}
}

func TestDescribeEmptyReport(t *testing.T) {
	if got := describe(domain.MissingFieldsReport{}); got != "more details about the change" {
		t.Errorf("describe() = %q", got)
	}
}

func TestMissingFieldsReplyPromptsForNeeds(t *testing.T) {
	model := &capturingModel{}
	g := New(model)

	reply, err := g.MissingFieldsReply(context.Background(), domain.MissingFieldsReport{
		Required: []domain.FieldRequirement{domain.Require(domain.FieldTitle)},
	}, nil)
	if err != nil {
		t.Fatalf("MissingFieldsReply: %v", err)
	}
	if reply == "" {
		t.Error("empty reply")
	}
	if !strings.Contains(model.prompt, "which meeting you mean") {
		t.Errorf("prompt = %q, missing the need phrase", model.prompt)
	}
}

func TestSuccessReplyIncludesSummaryAndHistoryTail(t *testing.T) {
	model := &capturingModel{}
	g := New(model)

	history := make([]ports.Message, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, ports.Message{Role: "user", Content: "filler"})
	}
	history[9].Content = "last message"

	if _, err := g.SuccessReply(context.Background(), "Standup has been updated.", history); err != nil {
		t.Fatalf("SuccessReply: %v", err)
	}
	if !strings.Contains(model.prompt, "Standup has been updated.") {
		t.Errorf("prompt = %q, missing the summary", model.prompt)
	}
	if !strings.Contains(model.prompt, "last message") {
		t.Errorf("prompt = %q, missing the history tail", model.prompt)
	}
	if strings.Count(model.prompt, "filler") > 5 {
		t.Errorf("prompt carries more than the last six history entries")
	}
}
