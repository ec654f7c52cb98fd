package models

// PatientView is the read-optimised projection of a patient cached in Redis.
// It carries exactly the fields the HTTP API returns.
type PatientView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	DateOfBirth    string `json:"dateOfBirth"`
	RegisteredDate string `json:"registeredDate"`
}

// ToView projects a patient onto its API shape.
func (p *Patient) ToView() *PatientView {
	return &PatientView{
		ID:             p.ID,
		Name:           p.Name,
		Email:          p.Email,
		Address:        p.Address,
		DateOfBirth:    p.DateOfBirth.String(),
		RegisteredDate: p.RegisteredDate.String(),
	}
}
