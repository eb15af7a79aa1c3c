//go:build !windows

package drives

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"

	"drivebak/internal/domain"
)

const defaultDiskDir = "/dev/disk"

func volumeRoot(mountpoint string) string {
	return mountpoint
}

// platformIdentifier reads the udev symlink tables once and matches
// partitions by their resolved device node
func (r *Resolver) platformIdentifier(ctx context.Context) identifyFunc {
	uuids := r.readTable("by-uuid")
	labels := r.readTable("by-label")

	return func(p disk.PartitionStat) identity {
		device := resolveDevice(p.Device)

		var id identity
		if name, ok := labels[device]; ok {
			id.Label = unescapeLabel(name)
		}
		if name, ok := uuids[device]; ok {
			serial, err := domain.ParseSerialNumber(name)
			if err != nil {
				r.logger.Debug("unrecognised volume id", "device", device, "id", name, "error", err)
			} else {
				id.Serial = serial
			}
		}
		return id
	}
}

// readTable maps resolved device node -> link name for one table
func (r *Resolver) readTable(table string) map[string]string {
	dir := filepath.Join(r.diskDir, table)
	entries, err := os.ReadDir(dir)
	if err != nil {
		r.logger.Debug("disk table unavailable", "dir", dir, "error", err)
		return nil
	}

	out := make(map[string]string, len(entries))
	for _, e := range entries {
		target, err := filepath.EvalSymlinks(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		out[target] = e.Name()
	}
	return out
}

// resolveDevice follows /dev/mapper style links to the real node
func resolveDevice(device string) string {
	if resolved, err := filepath.EvalSymlinks(device); err == nil {
		return resolved
	}
	return device
}

// unescapeLabel decodes the \xHH escapes udev uses in by-label names
func unescapeLabel(name string) string {
	if !strings.Contains(name, `\x`) {
		return name
	}

	var b strings.Builder
	for i := 0; i < len(name); i++ {
		if name[i] == '\\' && i+3 < len(name) && name[i+1] == 'x' {
			if v, err := strconv.ParseUint(name[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
