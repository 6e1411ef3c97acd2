package common

import (
	"github.com/google/uuid"
)

// NewEntryID generates a unique price history entry ID with the "price_" prefix
// Format: price_<uuid>
func NewEntryID() string {
	return "price_" + uuid.New().String()
}

// NewAlertID generates a unique alert history ID with the "alert_" prefix
func NewAlertID() string {
	return "alert_" + uuid.New().String()
}

// NewRunID generates a correlation ID for one pipeline execution
func NewRunID() string {
	return "run_" + uuid.New().String()
}
