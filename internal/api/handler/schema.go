package handler

import "github.com/skyline-residence/building-api/internal/core/domain"

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// tokenRequest only insists on an email, the one claim VerifyToken needs.
type tokenRequest struct {
	Email string `json:"email" validate:"required"`
	Name  string `json:"name"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// registerUserRequest accepts a role field for compatibility with existing
// clients; it is never stored.
type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"    validate:"required"`
	PhotoURL string `json:"photoURL"`
	Role     string `json:"role"`
}

type alreadyExistsResponse struct {
	Message    string  `json:"message"`
	InsertedID *string `json:"insertedId"`
}

type adminStatusResponse struct {
	Admin bool `json:"admin"`
}

type memberStatusResponse struct {
	Member bool `json:"member"`
}

// agreementRequest ignores any client supplied status.
type agreementRequest struct {
	UserName    string  `json:"userName"`
	Email       string  `json:"email"       validate:"required"`
	ApartmentID string  `json:"apartmentId"`
	FloorNo     int     `json:"floorNo"     validate:"min=0"`
	BlockName   string  `json:"blockName"`
	ApartmentNo string  `json:"apartmentNo" validate:"required"`
	Rent        float64 `json:"rent"        validate:"min=0"`
}

type announcementRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description"`
}

type paymentIntentRequest struct {
	Price float64 `json:"price" validate:"gt=0"`
}

type clientSecretResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type paymentRequest struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	FloorNo       int     `json:"floorNo"       validate:"min=0"`
	BlockName     string  `json:"blockName"`
	ApartmentNo   string  `json:"apartmentNo"`
	Rent          float64 `json:"rent"          validate:"min=0"`
	Month         string  `json:"month"`
	TransactionID string  `json:"transactionId"`
}

func (r agreementRequest) toDomain() domain.Agreement {
	return domain.Agreement{
		UserName:    r.UserName,
		Email:       r.Email,
		ApartmentID: r.ApartmentID,
		FloorNo:     r.FloorNo,
		BlockName:   r.BlockName,
		ApartmentNo: r.ApartmentNo,
		Rent:        r.Rent,
	}
}

func (r paymentRequest) toDomain() domain.Payment {
	return domain.Payment{
		Email:         r.Email,
		Name:          r.Name,
		FloorNo:       r.FloorNo,
		BlockName:     r.BlockName,
		ApartmentNo:   r.ApartmentNo,
		Rent:          r.Rent,
		Month:         r.Month,
		TransactionID: r.TransactionID,
	}
}
