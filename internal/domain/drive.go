package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SerialNumber identifies a volume independently of its drive letter or
// mount point. Numeric serials are kept as the 32-bit value Windows
// reports; anything else (ext4/btrfs UUIDs) is kept lowercased.
type SerialNumber struct {
	value   uint32
	raw     string
	numeric bool
}

// ErrInvalidSerial is returned for strings that are not a serial number
var ErrInvalidSerial = errors.New("invalid serial number")

// SerialFromUint32 wraps a serial as returned by GetVolumeInformation
func SerialFromUint32(v uint32) SerialNumber {
	return SerialNumber{value: v, numeric: true}
}

// ParseSerialNumber accepts the forms a volume serial shows up in:
//
//	1234567890          decimal, as Windows tools print it
//	0x499602D2          hex
//	4996-02D2           FAT/exFAT volume ID as Linux shows it
//	499602D2            the same without the dash
//	1A2B3C4D499602D2    NTFS 64-bit serial (16 hex digits, low 32 bits used)
//	0b1c...-...         any other UUID, compared case-insensitively
func ParseSerialNumber(s string) (SerialNumber, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SerialNumber{}, fmt.Errorf("%w: empty", ErrInvalidSerial)
	}

	if allDigits(s) {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return SerialNumber{}, fmt.Errorf("%w: %s out of range", ErrInvalidSerial, s)
		}
		return SerialFromUint32(uint32(v)), nil
	}

	lower := strings.ToLower(s)
	if hexPart, ok := strings.CutPrefix(lower, "0x"); ok {
		v, err := strconv.ParseUint(hexPart, 16, 32)
		if err != nil {
			return SerialNumber{}, fmt.Errorf("%w: %s", ErrInvalidSerial, s)
		}
		return SerialFromUint32(uint32(v)), nil
	}

	if len(lower) == 9 && lower[4] == '-' && allHex(lower[:4]) && allHex(lower[5:]) {
		v, _ := strconv.ParseUint(lower[:4]+lower[5:], 16, 32)
		return SerialFromUint32(uint32(v)), nil
	}

	if len(lower) == 8 && allHex(lower) {
		v, _ := strconv.ParseUint(lower, 16, 32)
		return SerialFromUint32(uint32(v)), nil
	}

	if len(lower) == 16 && allHex(lower) {
		v, _ := strconv.ParseUint(lower[8:], 16, 32)
		return SerialFromUint32(uint32(v)), nil
	}

	if isUUIDLike(lower) {
		return SerialNumber{raw: lower}, nil
	}

	return SerialNumber{}, fmt.Errorf("%w: %s", ErrInvalidSerial, s)
}

// IsZero reports whether no serial was set
func (s SerialNumber) IsZero() bool {
	return !s.numeric && s.raw == ""
}

// Equal compares two serials in canonical form
func (s SerialNumber) Equal(other SerialNumber) bool {
	if s.numeric != other.numeric {
		return false
	}
	if s.numeric {
		return s.value == other.value
	}
	return s.raw == other.raw
}

// String renders numeric serials in decimal, the form they are configured in
func (s SerialNumber) String() string {
	if s.numeric {
		return strconv.FormatUint(uint64(s.value), 10)
	}
	return s.raw
}

// Hex renders numeric serials the way `vol` and Linux print them (ABCD-1234)
func (s SerialNumber) Hex() string {
	if !s.numeric {
		return s.raw
	}
	h := fmt.Sprintf("%08X", s.value)
	return h[:4] + "-" + h[4:]
}

// MarshalText renders the serial as String does
func (s SerialNumber) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses any form ParseSerialNumber accepts
func (s *SerialNumber) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = SerialNumber{}
		return nil
	}
	parsed, err := ParseSerialNumber(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func isUUIDLike(s string) bool {
	if len(s) < 8 {
		return false
	}
	digits := 0
	for _, r := range s {
		if r == '-' {
			continue
		}
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
		digits++
	}
	return digits >= 8
}

// Volume is a mounted filesystem a backup can be written to
type Volume struct {
	Root   string       `json:"root"` // drive letter root ("E:\") or mount point
	Label  string       `json:"label"`
	Serial SerialNumber `json:"serial"`
	FSType string       `json:"fs_type"`
	Device string       `json:"device"`
	Total  uint64       `json:"total"`
	Free   uint64       `json:"free"`
}

// FindVolume returns the first volume whose serial matches
func FindVolume(volumes []Volume, serial SerialNumber) (Volume, bool) {
	if serial.IsZero() {
		return Volume{}, false
	}
	for _, v := range volumes {
		if v.Serial.Equal(serial) {
			return v, true
		}
	}
	return Volume{}, false
}
