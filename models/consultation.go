package models

import "time"

// ConsultationStatus tracks a callback request.
type ConsultationStatus string

const (
	ConsultationStatusCreated   ConsultationStatus = "created"
	ConsultationStatusConsulted ConsultationStatus = "consulted"
	ConsultationStatusCancelled ConsultationStatus = "cancelled"
)

// Consultation is a customer's request to be called back by a florist.
type Consultation struct {
	ID          int64              `db:"id" json:"id"`
	ClientName  string             `db:"client_name" json:"client_name"`
	Phone       string             `db:"phone" json:"phone"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	ConsultedAt *time.Time         `db:"consulted_at" json:"consulted_at,omitempty"`
	Status      ConsultationStatus `db:"status" json:"status"`
}
