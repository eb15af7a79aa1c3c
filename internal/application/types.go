package application

import "drivebak/internal/domain"

// Re-export domain types for use by adapters
type (
	Decision     = domain.Decision
	RunStats     = domain.RunStats
	RunRecord    = domain.RunRecord
	RunSummary   = domain.RunSummary
	Volume       = domain.Volume
	SerialNumber = domain.SerialNumber
)

// ParseSerial parses a configured serial number, reporting malformed
// values as configuration errors
func ParseSerial(key, value string) (domain.SerialNumber, error) {
	serial, err := domain.ParseSerialNumber(value)
	if err != nil {
		return domain.SerialNumber{}, &ConfigError{Key: key, Message: err.Error()}
	}
	return serial, nil
}
