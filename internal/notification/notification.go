package notification

import (
	"time"

	"github.com/google/uuid"
)

type DeviceToken struct {
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`
	Token      string    `json:"token" db:"token"`
	Platform   string    `json:"platform" db:"platform"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform"`
}
