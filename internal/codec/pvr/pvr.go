// Package pvr decodes the legacy (version 2) PowerVR texture container.
//
// The container is a 52-byte little-endian header followed by the texture
// data for every mip level. Pixel data is passed through untouched; only the
// header is interpreted.
package pvr

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/ipak/internal/codec"
	"github.com/meigma/ipak/internal/layout"
	"github.com/meigma/ipak/internal/sizing"
)

// Magic is the "PVR!" tag stored in the header.
const Magic = 0x21525650

// HeaderSize is the size of the version 2 header.
const HeaderSize = 52

// DefaultMaxDataSize bounds the texture data read from one file.
const DefaultMaxDataSize = 256 << 20

// Pixel types of the OpenGL ES family.
const (
	TypeRGBA4444 = 0x10
	TypeRGBA5551 = 0x11
	TypeRGBA8888 = 0x12
	TypeRGB565   = 0x13
	TypeRGB555   = 0x14
	TypeRGB888   = 0x15
	TypeI8       = 0x16
	TypeAI88     = 0x17
	TypePVRTC2   = 0x18
	TypePVRTC4   = 0x19
	TypeBGRA8888 = 0x1A
)

// FlagAlpha marks textures carrying an alpha channel.
const FlagAlpha = 0x8000

// Header is the version 2 container header.
type Header struct {
	HeaderLength uint32
	Height       uint32
	Width        uint32
	NumMipmaps   uint32
	Flags        uint32
	DataLength   uint32
	BitsPerPixel uint32
	RedMask      uint32
	GreenMask    uint32
	BlueMask     uint32
	AlphaMask    uint32
	Tag          uint32
	NumSurfaces  uint32
}

// PixelType returns the pixel type stored in the low byte of Flags.
func (h *Header) PixelType() uint32 {
	return h.Flags & 0xff
}

// HasAlpha reports whether the texture carries alpha.
func (h *Header) HasAlpha() bool {
	return h.Flags&FlagAlpha != 0 || h.AlphaMask != 0
}

// Format maps the header's pixel type to a pack pixel format.
func (h *Header) Format() (layout.PixelFormat, error) {
	switch h.PixelType() {
	case TypeRGB565:
		return layout.Format565, nil
	case TypeRGBA5551:
		return layout.Format5551, nil
	case TypeRGBA4444:
		return layout.Format4444, nil
	case TypeRGBA8888, TypeBGRA8888:
		return layout.Format8888, nil
	case TypeAI88:
		return layout.FormatLA, nil
	case TypePVRTC4:
		if h.HasAlpha() {
			return layout.FormatPVR4A, nil
		}
		return layout.FormatPVR4, nil
	case TypePVRTC2:
		if h.HasAlpha() {
			return layout.FormatPVR2A, nil
		}
		return layout.FormatPVR2, nil
	default:
		return 0, fmt.Errorf("%w: PVR pixel type %#x has no pack encoding", layout.ErrUnsupportedFormat, h.PixelType())
	}
}

// Decoder decodes PVR files. The zero value is ready to use.
type Decoder struct {
	// MaxDataSize bounds the data length accepted from a header.
	// Zero selects DefaultMaxDataSize.
	MaxDataSize uint32
}

// DecodeTexture implements codec.TextureDecoder.
func (d Decoder) DecodeTexture(r io.Reader) (codec.Texture, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return codec.Texture{}, err
	}
	format, err := h.Format()
	if err != nil {
		return codec.Texture{}, err
	}
	limit := d.MaxDataSize
	if limit == 0 {
		limit = DefaultMaxDataSize
	}
	if extra := int64(h.HeaderLength) - HeaderSize; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, extra); err != nil {
			return codec.Texture{}, fmt.Errorf("%w: PVR header: %v", codec.ErrMalformed, err)
		}
	}
	pixels, err := sizing.ReadAllWithLimit(io.LimitReader(r, int64(h.DataLength)), uint64(limit),
		fmt.Errorf("%w: PVR data length %d exceeds limit %d", codec.ErrMalformed, h.DataLength, limit))
	if err != nil {
		return codec.Texture{}, err
	}
	if len(pixels) != int(h.DataLength) {
		return codec.Texture{}, fmt.Errorf("%w: PVR data: read %d of %d bytes", codec.ErrMalformed, len(pixels), h.DataLength)
	}
	return codec.Texture{
		Width:  int(h.Width),
		Height: int(h.Height),
		Levels: int(h.NumMipmaps) + 1,
		Format: format,
		Pixels: pixels,
	}, nil
}

// ReadHeader reads and checks a version 2 header.
func ReadHeader(r io.Reader) (*Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: PVR header: %v", codec.ErrMalformed, err)
	}
	if h.Tag != Magic {
		return nil, fmt.Errorf("%w: missing PVR tag", codec.ErrMalformed)
	}
	if h.HeaderLength < HeaderSize {
		return nil, fmt.Errorf("%w: PVR header length %d", codec.ErrMalformed, h.HeaderLength)
	}
	return &h, nil
}
