// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationSubmittedEvent is published when a registration is
// successfully persisted.  It carries enough for downstream consumers to
// log, notify, or trigger back-office processing without querying the
// primary store.
type RegistrationSubmittedEvent struct {
	RollNumber     string `json:"roll_number"`
	AgentID        string `json:"agent_id"`
	MembershipType string `json:"membership_type"`
	FamilyName     string `json:"family_name"`
	FirstName      string `json:"first_name"`
	RefID          string `json:"refid,omitempty"`
	SubmittedAt    string `json:"submitted_at"`
}
