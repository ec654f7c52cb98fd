package cqrs

// ---------- Patient queries ----------

// GetPatientQuery fetches a single patient by ID.
type GetPatientQuery struct {
	PatientID string
}

// ListPatientsQuery fetches every patient record.
type ListPatientsQuery struct{}

// ---------- Billing queries ----------

// GetBillingAccountQuery fetches the billing account provisioned for a patient.
type GetBillingAccountQuery struct {
	PatientID string
}

// ---------- Auth queries ----------

// ValidateTokenQuery checks a bearer token issued by the auth service.
type ValidateTokenQuery struct {
	Token string
}
