// Package arena implements the append-only byte region the archive is
// assembled in.
//
// Allocations hand out offsets, never pointers, so the backing storage may
// grow without invalidating anything previously returned. The arena never
// grows beyond its capacity; an allocation that would do so fails with
// ErrCapacity and leaves the arena unchanged.
package arena

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// DefaultCapacity is the capacity used when none is configured (100 MiB).
const DefaultCapacity = 100 << 20

// ErrCapacity is returned when an allocation would exceed the arena capacity.
var ErrCapacity = errors.New("ipak: arena capacity exceeded")

// ErrOutOfRange is returned when an access falls outside the allocated region.
var ErrOutOfRange = errors.New("ipak: arena access out of range")

// ErrReadOnly is returned when allocating from a wrapped arena.
var ErrReadOnly = errors.New("ipak: arena is read-only")

// Arena is a fixed-capacity, append-only byte buffer.
//
// The zero value is not usable; construct with New or Wrap.
type Arena struct {
	buf      []byte
	capacity int
	readOnly bool
}

// New returns an empty arena that can hold at most capacity bytes.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Arena{capacity: capacity}
}

// Wrap returns a read-only arena over data. Accessors work as usual; Allocate
// always fails. The arena aliases data, so callers must not modify it.
func Wrap(data []byte) *Arena {
	return &Arena{buf: data, capacity: len(data), readOnly: true}
}

// Allocate reserves size zeroed bytes and returns the offset of the first one.
func (a *Arena) Allocate(size int) (int, error) {
	if a.readOnly {
		return 0, ErrReadOnly
	}
	if size < 0 {
		return 0, fmt.Errorf("ipak: negative allocation size %d", size)
	}
	used := len(a.buf)
	if size > a.capacity-used {
		return 0, fmt.Errorf("%w: need %d bytes, %d of %d used", ErrCapacity, size, used, a.capacity)
	}
	a.buf = append(a.buf, make([]byte, size)...)
	return used, nil
}

// Len returns the number of bytes allocated so far.
func (a *Arena) Len() int {
	return len(a.buf)
}

// Cap returns the arena capacity.
func (a *Arena) Cap() int {
	return a.capacity
}

// Bytes returns the allocated region. The slice is only valid until the next
// Allocate call.
func (a *Arena) Bytes() []byte {
	return a.buf
}

// Contains reports whether [off, off+size) lies within the allocated region.
func (a *Arena) Contains(off, size int) bool {
	return off >= 0 && size >= 0 && off <= len(a.buf) && size <= len(a.buf)-off
}

// Slice returns the allocated bytes [off, off+size). Writes through the
// returned slice modify the arena; it is only valid until the next Allocate.
func (a *Arena) Slice(off, size int) ([]byte, error) {
	if !a.Contains(off, size) {
		return nil, fmt.Errorf("%w: [%d, +%d) of %d", ErrOutOfRange, off, size, len(a.buf))
	}
	return a.buf[off : off+size : off+size], nil
}

// Int32 reads a little-endian int32 at off. It panics if off is out of range;
// callers validate their views on construction.
func (a *Arena) Int32(off int) int32 {
	return int32(binary.LittleEndian.Uint32(a.buf[off : off+4])) //nolint:gosec // two's complement reinterpretation
}

// PutInt32 writes a little-endian int32 at off.
func (a *Arena) PutInt32(off int, v int32) {
	binary.LittleEndian.PutUint32(a.buf[off:off+4], uint32(v)) //nolint:gosec // two's complement reinterpretation
}

// Float32 reads a little-endian IEEE-754 float32 at off.
func (a *Arena) Float32(off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(a.buf[off : off+4]))
}

// PutFloat32 writes a little-endian IEEE-754 float32 at off.
func (a *Arena) PutFloat32(off int, v float32) {
	binary.LittleEndian.PutUint32(a.buf[off:off+4], math.Float32bits(v))
}
