package domain

import "time"

// AgreementStatus is the review state of a tenancy application.
type AgreementStatus string

const (
	AgreementPending AgreementStatus = "pending"
	AgreementChecked AgreementStatus = "checked"
)

// validTransitions holds the agreement state machine. Checked is terminal.
var validTransitions = map[AgreementStatus][]AgreementStatus{
	AgreementPending: {AgreementChecked},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AgreementStatus) CanTransitionTo(next AgreementStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Agreement is a tenancy application linking an applicant to an apartment.
type Agreement struct {
	ID          string          `json:"_id,omitempty"`
	UserName    string          `json:"userName"`
	Email       string          `json:"email"`
	ApartmentID string          `json:"apartmentId,omitempty"`
	FloorNo     int             `json:"floorNo"`
	BlockName   string          `json:"blockName"`
	ApartmentNo string          `json:"apartmentNo"`
	Rent        float64         `json:"rent"`
	Status      AgreementStatus `json:"status"`
	RequestedAt time.Time       `json:"requestedAt"`
}
