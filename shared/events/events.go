package events

import "time"

// Event types
const (
	PatientCreated = "patient.created"
	PatientUpdated = "patient.updated"
)

// Stream names
const (
	PatientEventsStream = "patient.events"
)

// Event is the envelope written to a stream. Key is the partition key
// (the patient id) so consumers can order per patient.
type Event struct {
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// PatientEvent announces a change to a patient record.
type PatientEvent struct {
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	EventType string `json:"eventType"`
}

const (
	BillingAccountCreated = "billing.account_created"
	BillingEventsStream   = "billing.events"
)

// BillingAccountEvent announces a newly provisioned billing account.
type BillingAccountEvent struct {
	AccountID string `json:"accountId"`
	PatientID string `json:"patientId"`
	Email     string `json:"email"`
}
