package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/orderlink/backend/internal/domain/privacy"
)

// CustomerDataRequestModel is the persistence model for customer data
// requests.
type CustomerDataRequestModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	Shop         string     `gorm:"type:varchar(255);not null;index:idx_data_request_shop"`
	CustomerID   int64      `gorm:"not null"`
	Email        string     `gorm:"type:varchar(255)"`
	OrderIDsJSON string     `gorm:"type:jsonb;column:order_ids"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt    time.Time  `gorm:"not null"`
	FulfilledAt  *time.Time
}

// TableName returns the table name for GORM
func (CustomerDataRequestModel) TableName() string {
	return "customer_data_requests"
}

// ToDomain converts the persistence model to a domain request.
func (m *CustomerDataRequestModel) ToDomain() *privacy.CustomerDataRequest {
	request := &privacy.CustomerDataRequest{
		ID:          m.ID,
		Shop:        m.Shop,
		CustomerID:  m.CustomerID,
		Email:       m.Email,
		Status:      privacy.RequestStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		FulfilledAt: m.FulfilledAt,
	}
	if m.OrderIDsJSON != "" {
		var orderIDs []int64
		if err := json.Unmarshal([]byte(m.OrderIDsJSON), &orderIDs); err == nil {
			request.OrderIDs = orderIDs
		}
	}
	return request
}

// FromDomain populates the persistence model from a domain request.
func (m *CustomerDataRequestModel) FromDomain(request *privacy.CustomerDataRequest) error {
	m.ID = request.ID
	m.Shop = request.Shop
	m.CustomerID = request.CustomerID
	m.Email = request.Email
	m.Status = string(request.Status)
	m.CreatedAt = request.CreatedAt
	m.FulfilledAt = request.FulfilledAt

	orderIDs, err := marshalCollection(request.OrderIDs)
	if err != nil {
		return err
	}
	m.OrderIDsJSON = orderIDs
	return nil
}
