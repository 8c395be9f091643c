package privacy

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/orderlink/backend/internal/domain/shared"
)

// RequestStatus tracks how far a data request has been handled.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusFulfilled RequestStatus = "FULFILLED"
)

// CustomerDataRequest records a storefront data-subject request so it can be
// answered even after the shop uninstalls.
type CustomerDataRequest struct {
	ID          uuid.UUID     `json:"id"`
	Shop        string        `json:"shop"`
	CustomerID  int64         `json:"customer_id"`
	Email       string        `json:"email"`
	OrderIDs    []int64       `json:"order_ids"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	FulfilledAt *time.Time    `json:"fulfilled_at,omitempty"`
}

// NewCustomerDataRequest records an incoming data request
func NewCustomerDataRequest(shop string, customerID int64, email string, orderIDs []int64) (*CustomerDataRequest, error) {
	if shop == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shop domain cannot be empty")
	}
	return &CustomerDataRequest{
		ID:         uuid.New(),
		Shop:       shop,
		CustomerID: customerID,
		Email:      email,
		OrderIDs:   orderIDs,
		Status:     RequestStatusPending,
		CreatedAt:  time.Now(),
	}, nil
}

// Fulfill marks the request as answered
func (r *CustomerDataRequest) Fulfill() {
	now := time.Now()
	r.Status = RequestStatusFulfilled
	r.FulfilledAt = &now
}

// Repository is the persistence port for data requests.
type Repository interface {
	Save(ctx context.Context, request *CustomerDataRequest) error
	FindByShop(ctx context.Context, shop string) ([]CustomerDataRequest, error)
	DeleteByShop(ctx context.Context, shop string) error
}
