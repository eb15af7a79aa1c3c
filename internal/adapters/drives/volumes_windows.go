//go:build windows

package drives

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sys/windows"

	"drivebak/internal/domain"
)

const defaultDiskDir = ""

// volumeRoot turns "E:" into "E:\" so joins stay absolute
func volumeRoot(mountpoint string) string {
	if len(mountpoint) == 2 && mountpoint[1] == ':' {
		return mountpoint + `\`
	}
	return mountpoint
}

func (r *Resolver) platformIdentifier(ctx context.Context) identifyFunc {
	return func(p disk.PartitionStat) identity {
		root := volumeRoot(p.Mountpoint)
		if !strings.HasSuffix(root, `\`) {
			root += `\`
		}

		rootPtr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			return identity{}
		}

		var (
			label  [windows.MAX_PATH + 1]uint16
			fsName [windows.MAX_PATH + 1]uint16
			serial uint32
			maxLen uint32
			flags  uint32
		)
		err = windows.GetVolumeInformation(rootPtr, &label[0], uint32(len(label)),
			&serial, &maxLen, &flags, &fsName[0], uint32(len(fsName)))
		if err != nil {
			// Empty card readers and optical drives land here
			r.logger.Debug("volume information unavailable", "root", root, "error", err)
			return identity{}
		}

		return identity{
			Label:  windows.UTF16ToString(label[:]),
			Serial: domain.SerialFromUint32(serial),
		}
	}
}
