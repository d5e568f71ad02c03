package enums

import "fmt"

// OrderStatus tracks the lifecycle of a confirmed order snapshot.
type OrderStatus string

const (
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusShipped      OrderStatus = "shipped"
	OrderStatusCompleted    OrderStatus = "completed"
	OrderStatusCanceled     OrderStatus = "canceled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusInProduction,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// DispatchStatus records the outcome of the one-way production dispatch.
type DispatchStatus string

const (
	DispatchStatusSkipped DispatchStatus = "skipped"
	DispatchStatusPending DispatchStatus = "pending"
	DispatchStatusSent    DispatchStatus = "sent"
	DispatchStatusFailed  DispatchStatus = "failed"
)

var validDispatchStatuses = []DispatchStatus{
	DispatchStatusSkipped,
	DispatchStatusPending,
	DispatchStatusSent,
	DispatchStatusFailed,
}

// String implements fmt.Stringer.
func (s DispatchStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DispatchStatus.
func (s DispatchStatus) IsValid() bool {
	for _, candidate := range validDispatchStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDispatchStatus converts raw input into a DispatchStatus.
func ParseDispatchStatus(value string) (DispatchStatus, error) {
	for _, candidate := range validDispatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispatch status %q", value)
}
