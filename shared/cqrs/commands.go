package cqrs

// CreatePatientCommand carries the raw request fields; dates are still
// unparsed ISO strings so the orchestrator owns the InvalidDate decision.
type CreatePatientCommand struct {
	Name           string
	Email          string
	Address        string
	DateOfBirth    string
	RegisteredDate string
}

// UpdatePatientCommand replaces the mutable fields of an existing patient.
// RegisteredDate is immutable after creation and is therefore absent.
type UpdatePatientCommand struct {
	PatientID   string
	Name        string
	Email       string
	Address     string
	DateOfBirth string
}

type ProvisionBillingAccountCommand struct {
	PatientID string
	Name      string
	Email     string
}

type LoginCommand struct {
	Email    string
	Password string
}

type RefreshTokenCommand struct {
	Token string
}
