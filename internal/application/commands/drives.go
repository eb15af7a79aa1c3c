package commands

import (
	"context"
	"fmt"

	"drivebak/internal/application"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// ListDrivesCommand lists mounted volumes with their serial numbers
type ListDrivesCommand struct {
	resolver ports.DriveResolver
}

// NewListDrivesCommand creates a new ListDrivesCommand
func NewListDrivesCommand(resolver ports.DriveResolver) *ListDrivesCommand {
	return &ListDrivesCommand{resolver: resolver}
}

// Execute runs the list drives command
func (c *ListDrivesCommand) Execute(ctx context.Context) ([]domain.Volume, error) {
	return c.resolver.ListVolumes(ctx)
}

// ResolveDriveCommand finds the mounted volume carrying a serial number
type ResolveDriveCommand struct {
	resolver ports.DriveResolver
	Serial   domain.SerialNumber
}

// ResolveDriveResult contains the resolved volume
type ResolveDriveResult struct {
	Volume  domain.Volume
	Message string
}

// NewResolveDriveCommand creates a new ResolveDriveCommand
func NewResolveDriveCommand(resolver ports.DriveResolver, serial domain.SerialNumber) *ResolveDriveCommand {
	return &ResolveDriveCommand{
		resolver: resolver,
		Serial:   serial,
	}
}

// Validate checks a serial was given
func (c *ResolveDriveCommand) Validate() error {
	if c.Serial.IsZero() {
		return &application.ValidationError{Field: "serial", Message: "drive serial number is required"}
	}
	return nil
}

// Execute runs the resolve drive command
func (c *ResolveDriveCommand) Execute(ctx context.Context) (*ResolveDriveResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	volume, err := c.resolver.Resolve(ctx, c.Serial)
	if err != nil {
		return nil, err
	}

	return &ResolveDriveResult{
		Volume:  volume,
		Message: fmt.Sprintf("Drive %s is mounted at %s", c.Serial.Hex(), volume.Root),
	}, nil
}
