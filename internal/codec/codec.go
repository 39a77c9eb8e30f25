// Package codec defines the boundary between the pack builder and the asset
// decoders that turn source files into payload bytes.
package codec

import (
	"errors"
	"io"

	"github.com/meigma/ipak/internal/layout"
)

// ErrMalformed is returned when a source asset cannot be parsed.
var ErrMalformed = errors.New("ipak: malformed asset")

// Texture is a decoded texture.
type Texture struct {
	Width  int
	Height int
	// Levels counts every mip level including the base image.
	Levels int
	Format layout.PixelFormat
	// Pixels holds all mip levels as stored by the source, opaque to the pack.
	Pixels []byte
}

// Audio is decoded audio as interleaved signed 16-bit little-endian PCM.
type Audio struct {
	Channels   int
	SampleRate int
	Frames     int
	PCM        []byte
}

// BytesPerSample is the sample width of Audio.PCM.
const BytesPerSample = 2

// TextureDecoder decodes a texture source file.
type TextureDecoder interface {
	DecodeTexture(r io.Reader) (Texture, error)
}

// AudioDecoder decodes an audio source file.
type AudioDecoder interface {
	DecodeAudio(r io.ReadSeeker) (Audio, error)
}
