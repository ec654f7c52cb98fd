package models

import "time"

// SyncState tracks how far a patient record has progressed through the
// persist -> provision -> announce sequence.
type SyncState string

const (
	SyncCreated     SyncState = "CREATED"
	SyncProvisioned SyncState = "PROVISIONED"
	SyncAnnounced   SyncState = "ANNOUNCED"
)

// Patient is the system-of-record write model.
type Patient struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	DateOfBirth    Date      `json:"dateOfBirth"`
	RegisteredDate Date      `json:"registeredDate"`
	SyncState      SyncState `json:"-"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// User is an auth-service principal.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// BillingAccount is the billing-service record provisioned for a patient.
type BillingAccount struct {
	AccountID string    `json:"accountId"`
	PatientID string    `json:"patientId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdTimestamp"`
}
