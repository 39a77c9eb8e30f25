// Package layout defines the on-disk structure of a pack and typed views
// that read and write it through an arena.
//
// A pack is the arena contents written verbatim:
//
//	header  version + three type tables (raw, texture, audio)
//	entries one contiguous run of fixed-size structs per type table
//	payload audio PCM and texture pixel blobs
//
// Every field is a packed little-endian 32-bit value (names are fixed
// 64-byte arrays), so the layout has no implicit padding. All stored offsets
// are relative to the start of the header, which is always the first
// allocation in the arena.
package layout

import (
	"errors"

	"github.com/meigma/ipak/internal/canon"
)

// Version identifies the pack format.
const Version int32 = 0x12340002

// HashChains is the number of hash buckets per type table. Must be a power of two.
const HashChains = 256

// Empty marks an unset chain head, chain link or table offset.
const Empty int32 = -1

// Structure sizes in bytes.
const (
	NameSize    = canon.NameSize
	NameRecSize = NameSize + 8
	TableSize   = 12 + HashChains*4
	HeaderSize  = 4 + 3*TableSize
	AudioSize   = NameRecSize + 5*4
	TextureSize = NameRecSize + 23*4
)

var (
	// ErrLayout is returned when an operation would break the contiguous
	// entry table invariant.
	ErrLayout = errors.New("ipak: layout violation")

	// ErrInvalidArchive is returned when pack data is malformed.
	ErrInvalidArchive = errors.New("ipak: invalid archive")

	// ErrUnsupportedFormat is returned for pixel formats the pack cannot encode.
	ErrUnsupportedFormat = errors.New("ipak: unsupported format")
)

// Class identifies one of the three type tables.
type Class uint8

// Type table classes, in header order.
const (
	ClassRaw Class = iota
	ClassTexture
	ClassAudio
)

// Classes lists all classes in header order.
var Classes = [...]Class{ClassRaw, ClassTexture, ClassAudio}

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassRaw:
		return "raw"
	case ClassTexture:
		return "texture"
	case ClassAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// EntrySize returns the struct size of one entry of class c.
func EntrySize(c Class) int {
	switch c {
	case ClassTexture:
		return TextureSize
	case ClassAudio:
		return AudioSize
	default:
		return NameRecSize
	}
}
