package layout

import (
	"fmt"

	"github.com/meigma/ipak/internal/arena"
	"github.com/meigma/ipak/internal/sizing"
)

// Header is a view of the pack header.
type Header struct {
	a   *arena.Arena
	off int
}

// NewHeader allocates and initializes a header. It must be the arena's first
// allocation, since every stored offset is relative to it.
func NewHeader(a *arena.Arena) (Header, error) {
	if a.Len() != 0 {
		return Header{}, fmt.Errorf("%w: header must be the first allocation, arena holds %d bytes", ErrLayout, a.Len())
	}
	off, err := a.Allocate(HeaderSize)
	if err != nil {
		return Header{}, err
	}
	h := Header{a: a, off: off}
	a.PutInt32(off, Version)
	for _, c := range Classes {
		h.Table(c).reset()
	}
	return h, nil
}

// HeaderAt returns a view of an existing header at the start of a and
// validates the version and every type table.
func HeaderAt(a *arena.Arena) (Header, error) {
	if !a.Contains(0, HeaderSize) {
		return Header{}, fmt.Errorf("%w: %d bytes is smaller than the %d byte header", ErrInvalidArchive, a.Len(), HeaderSize)
	}
	h := Header{a: a}
	if v := h.Version(); v != Version {
		return Header{}, fmt.Errorf("%w: version %#x, want %#x", ErrInvalidArchive, v, Version)
	}
	for _, c := range Classes {
		if err := h.Table(c).Validate(); err != nil {
			return Header{}, err
		}
	}
	return h, nil
}

// Version returns the format version.
func (h Header) Version() int32 {
	return h.a.Int32(h.off)
}

// Table returns the type table for class c.
func (h Header) Table(c Class) Table {
	return Table{
		a:     h.a,
		base:  h.off,
		off:   h.off + 4 + int(c)*TableSize,
		class: c,
	}
}

// Rel converts an arena offset into the header-relative form stored in
// entries.
func (h Header) Rel(off int) (int32, error) {
	rel := off - h.off
	if rel < 0 {
		return 0, fmt.Errorf("%w: offset %d precedes the header", ErrLayout, off)
	}
	return sizing.ToInt32(rel, fmt.Errorf("%w: offset %d does not fit in 32 bits", ErrLayout, rel))
}

// Abs converts a stored header-relative offset back into an arena offset.
func (h Header) Abs(rel int32) int {
	return h.off + int(rel)
}
