package ports

import (
	"context"

	"drivebak/internal/domain"
)

// DriveResolver finds mounted volumes by serial number
type DriveResolver interface {
	ListVolumes(ctx context.Context) ([]domain.Volume, error)

	// Resolve returns the first volume with the serial, or an error matching
	// application.ErrPreconditionFailed when none is mounted
	Resolve(ctx context.Context, serial domain.SerialNumber) (domain.Volume, error)
}
