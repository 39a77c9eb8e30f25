package ipak

import (
	"errors"

	"github.com/meigma/ipak/internal/arena"
	"github.com/meigma/ipak/internal/codec"
	"github.com/meigma/ipak/internal/index"
	"github.com/meigma/ipak/internal/layout"
	"github.com/meigma/ipak/internal/platform"
	"github.com/meigma/ipak/internal/sidecar"
)

// Errors re-exported from internal packages.
var (
	// ErrCapacity is returned when the pack outgrows its configured capacity.
	ErrCapacity = arena.ErrCapacity

	// ErrLayout is returned when entry tables would stop being contiguous.
	ErrLayout = layout.ErrLayout

	// ErrInvalidArchive is returned when pack data fails validation.
	ErrInvalidArchive = layout.ErrInvalidArchive

	// ErrUnsupportedFormat is returned for pixel formats the pack cannot encode.
	ErrUnsupportedFormat = layout.ErrUnsupportedFormat

	// ErrCorruptChain is returned when a hash chain is cyclic, out of range
	// or does not reach every entry.
	ErrCorruptChain = index.ErrCorruptChain

	// ErrInvalidConfig is returned for malformed texture sidecar files.
	ErrInvalidConfig = sidecar.ErrInvalidConfig

	// ErrMalformed is returned when a source asset cannot be decoded.
	ErrMalformed = codec.ErrMalformed

	// ErrSymlink is returned when an asset is replaced by a symlink during a build.
	ErrSymlink = platform.ErrSymlink
)

var (
	// ErrSizeOverflow is returned when a size or offset does not fit the
	// 32-bit fields of the pack.
	ErrSizeOverflow = errors.New("ipak: size overflow")

	// ErrNotFound is returned when a lookup matches no entry.
	ErrNotFound = errors.New("ipak: entry not found")
)

// AssetError records a failure to read or decode a single source file.
type AssetError struct {
	Op   string
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
