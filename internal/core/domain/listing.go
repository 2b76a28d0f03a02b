package domain

import "time"

// Apartment is a unit offered for rent.
type Apartment struct {
	ID          string  `json:"_id,omitempty"`
	Image       string  `json:"image,omitempty"`
	FloorNo     int     `json:"floorNo"`
	BlockName   string  `json:"blockName"`
	ApartmentNo string  `json:"apartmentNo"`
	Rent        float64 `json:"rent"`
}

// Announcement is a notice published by building management.
type Announcement struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Payment is a recorded rent payment made by a member.
type Payment struct {
	ID            string    `json:"_id,omitempty"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	FloorNo       int       `json:"floorNo"`
	BlockName     string    `json:"blockName"`
	ApartmentNo   string    `json:"apartmentNo"`
	Rent          float64   `json:"rent"`
	Month         string    `json:"month"`
	TransactionID string    `json:"transactionId"`
	PaidAt        time.Time `json:"date"`
}
