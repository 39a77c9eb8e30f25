package ipak

import (
	"github.com/meigma/ipak/internal/arena"
	"github.com/meigma/ipak/internal/canon"
	"github.com/meigma/ipak/internal/codec"
	"github.com/meigma/ipak/internal/layout"
)

// Re-export layout types.
type (
	// Class identifies one of the three type tables of a pack.
	Class = layout.Class

	// PixelFormat is the texture pixel encoding stored in texture entries.
	PixelFormat = layout.PixelFormat

	// AudioFields holds the metadata of an audio entry.
	AudioFields = layout.AudioFields

	// TextureFields holds the metadata of a texture entry.
	TextureFields = layout.TextureFields

	// Rect is a texture bound rectangle.
	Rect = layout.Rect
)

// Type table classes, in header order.
const (
	ClassRaw     = layout.ClassRaw
	ClassTexture = layout.ClassTexture
	ClassAudio   = layout.ClassAudio
)

// Pixel formats.
const (
	Format565   = layout.Format565
	Format5551  = layout.Format5551
	Format4444  = layout.Format4444
	Format8888  = layout.Format8888
	FormatLA    = layout.FormatLA
	FormatPVR4  = layout.FormatPVR4
	FormatPVR4A = layout.FormatPVR4A
	FormatPVR2  = layout.FormatPVR2
	FormatPVR2A = layout.FormatPVR2A
)

// Re-export codec types so callers can plug in their own decoders.
type (
	// Texture is a decoded texture.
	Texture = codec.Texture

	// Audio is decoded 16-bit PCM audio.
	Audio = codec.Audio

	// TextureDecoder decodes texture source files.
	TextureDecoder = codec.TextureDecoder

	// AudioDecoder decodes audio source files.
	AudioDecoder = codec.AudioDecoder
)

const (
	// Version identifies the pack format.
	Version = layout.Version

	// HashChains is the number of hash buckets per type table.
	HashChains = layout.HashChains

	// MaxNameLen is the longest canonical name, in bytes.
	MaxNameLen = canon.MaxLen

	// HeaderSize is the size of a pack with no entries.
	HeaderSize = layout.HeaderSize

	// DefaultCapacity is the arena capacity used when none is configured.
	DefaultCapacity = arena.DefaultCapacity
)

// Canonicalize returns the lookup form of a relative asset path and its hash.
func Canonicalize(path string) (name string, hash int32) {
	return canon.Canonicalize(path)
}
