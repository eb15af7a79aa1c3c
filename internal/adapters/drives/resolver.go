// Package drives enumerates mounted volumes and finds the one carrying a
// given serial number.
package drives

import (
	"context"
	"log/slog"

	"github.com/shirou/gopsutil/v4/disk"

	"drivebak/internal/application"
	"drivebak/internal/domain"
	"drivebak/internal/ports"
)

// identity is what the platform knows about a volume beyond its mount
type identity struct {
	Label  string
	Serial domain.SerialNumber
}

// identifyFunc looks up a partition's label and serial. It is built once
// per listing so platform tables are read once.
type identifyFunc func(p disk.PartitionStat) identity

// Resolver implements ports.DriveResolver on top of gopsutil
type Resolver struct {
	diskDir    string
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	identifier func(ctx context.Context) identifyFunc
	logger     *slog.Logger
}

// Ensure Resolver implements DriveResolver
var _ ports.DriveResolver = (*Resolver)(nil)

// Option configures a Resolver
type Option func(*Resolver)

// WithDiskDir overrides the directory holding the by-uuid and by-label
// symlink tables (default /dev/disk). Ignored on Windows.
func WithDiskDir(dir string) Option {
	return func(r *Resolver) {
		r.diskDir = dir
	}
}

// NewResolver creates a Resolver for the running platform
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		diskDir:    defaultDiskDir,
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
		logger:     slog.Default().With("component", "drives"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.identifier == nil {
		r.identifier = r.platformIdentifier
	}
	return r
}

// ListVolumes returns every mounted volume in the order the OS reports them
func (r *Resolver) ListVolumes(ctx context.Context) ([]domain.Volume, error) {
	parts, err := r.partitions(ctx, false)
	if err != nil {
		return nil, &application.IOError{Op: "list partitions", Err: err}
	}

	identify := r.identifier(ctx)
	volumes := make([]domain.Volume, 0, len(parts))
	for _, p := range parts {
		id := identify(p)
		v := domain.Volume{
			Root:   volumeRoot(p.Mountpoint),
			Label:  id.Label,
			Serial: id.Serial,
			FSType: p.Fstype,
			Device: p.Device,
		}

		if u, err := r.usage(ctx, p.Mountpoint); err == nil {
			v.Total = u.Total
			v.Free = u.Free
		} else {
			r.logger.Debug("usage unavailable", "mount", p.Mountpoint, "error", err)
		}

		volumes = append(volumes, v)
	}

	return volumes, nil
}

// Resolve returns the first mounted volume with the given serial
func (r *Resolver) Resolve(ctx context.Context, serial domain.SerialNumber) (domain.Volume, error) {
	volumes, err := r.ListVolumes(ctx)
	if err != nil {
		return domain.Volume{}, err
	}

	v, ok := domain.FindVolume(volumes, serial)
	if !ok {
		r.logger.Debug("no volume matched", "serial", serial.Hex(), "volumes", len(volumes))
		return domain.Volume{}, &application.NoDriveError{Serial: serial.Hex()}
	}

	r.logger.Debug("resolved volume", "serial", serial.Hex(), "root", v.Root, "label", v.Label)
	return v, nil
}
