package domain

// Field names reported back to the conversation layer when a draft cannot
// be committed yet. These feed reply generation, so they are stable
// identifiers, not display strings.
const (
	FieldTitle         = "title"
	FieldAttendeeEmail = "attendee.email"
	FieldDate          = "dateTime.date"
	FieldTime          = "dateTime.time"
)

// FieldRequirement names one unsatisfied required field, or a logical
// group of fields of which all (And) or any (Or) would satisfy it.
type FieldRequirement struct {
	Field string             `json:"field,omitempty"`
	And   []FieldRequirement `json:"and,omitempty"`
	Or    []FieldRequirement `json:"oneOf,omitempty"`
}

// Require builds a leaf requirement.
func Require(field string) FieldRequirement {
	return FieldRequirement{Field: field}
}

// MissingFieldsReport is the ordered accumulation of unsatisfied
// requirements for a draft. Required holds entity fields; DateTime holds
// start-time signals, which are only demanded on continuation turns.
// An empty report means the draft is committable.
type MissingFieldsReport struct {
	Required []FieldRequirement `json:"required"`
	DateTime []FieldRequirement `json:"dateTime,omitempty"`
}

// Empty reports whether every requirement is satisfied.
func (r MissingFieldsReport) Empty() bool {
	return len(r.Required) == 0 && len(r.DateTime) == 0
}

// Count returns the total number of unsatisfied requirements.
func (r MissingFieldsReport) Count() int {
	return len(r.Required) + len(r.DateTime)
}
