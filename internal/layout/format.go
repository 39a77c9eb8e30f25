package layout

import "fmt"

// PixelFormat is the texture pixel encoding stored in a texture entry.
type PixelFormat int32

// Pixel formats understood by the runtime.
const (
	Format565 PixelFormat = iota
	Format5551
	Format4444
	Format8888
	FormatLA
	FormatPVR4
	FormatPVR4A
	FormatPVR2
	FormatPVR2A
)

var formatNames = [...]string{
	Format565:   "565",
	Format5551:  "5551",
	Format4444:  "4444",
	Format8888:  "8888",
	FormatLA:    "LA",
	FormatPVR4:  "PVR4",
	FormatPVR4A: "PVR4A",
	FormatPVR2:  "PVR2",
	FormatPVR2A: "PVR2A",
}

// String returns the sidecar spelling of the format.
func (f PixelFormat) String() string {
	if f.Valid() {
		return formatNames[f]
	}
	return fmt.Sprintf("PixelFormat(%d)", int32(f))
}

// Valid reports whether f is a known format.
func (f PixelFormat) Valid() bool {
	return f >= Format565 && int(f) < len(formatNames)
}

// ParsePixelFormat parses the sidecar spelling of a format. Matching is
// exact, as written by the texture tools.
func ParsePixelFormat(s string) (PixelFormat, error) {
	for i, name := range formatNames {
		if name == s {
			return PixelFormat(i), nil //nolint:gosec // bounded by formatNames
		}
	}
	return 0, fmt.Errorf("%w: unknown texture format %q", ErrUnsupportedFormat, s)
}
