// Package testutil builds source asset fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles creates files under dir. Keys are slash-separated relative paths.
func WriteFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(tb, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(tb, os.WriteFile(path, data, 0o644))
	}
}

// PVR describes a version 2 PowerVR file to synthesize.
type PVR struct {
	Width      uint32
	Height     uint32
	NumMipmaps uint32
	PixelType  uint32
	Alpha      bool
	Data       []byte
}

// Bytes encodes p as a PVR file.
func (p PVR) Bytes() []byte {
	flags := p.PixelType
	if p.Alpha {
		flags |= 0x8000
	}
	header := []uint32{
		52,
		p.Height,
		p.Width,
		p.NumMipmaps,
		flags,
		uint32(len(p.Data)), //nolint:gosec // test fixture sizes are small
		16,
		0, 0, 0, 0,
		0x21525650,
		1,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, header)
	buf.Write(p.Data)
	return buf.Bytes()
}

// WAV describes an integer PCM WAVE file to synthesize.
type WAV struct {
	Channels   int
	SampleRate int
	BitDepth   int
	// Samples are interleaved; 8-bit samples are unsigned, wider ones signed.
	Samples []int
}

// Bytes encodes w as a WAVE file.
func (w WAV) Bytes() []byte {
	width := w.BitDepth / 8
	var data bytes.Buffer
	for _, s := range w.Samples {
		switch width {
		case 1:
			data.WriteByte(byte(s))
		case 2:
			_ = binary.Write(&data, binary.LittleEndian, int16(s)) //nolint:gosec // fixture values fit
		case 3:
			data.Write([]byte{byte(s), byte(s >> 8), byte(s >> 16)})
		default:
			_ = binary.Write(&data, binary.LittleEndian, int32(s)) //nolint:gosec // fixture values fit
		}
	}

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, le, uint32(36+data.Len())) //nolint:gosec // fixture sizes are small
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, le, uint32(16))
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, uint16(w.Channels))                     //nolint:gosec // fixture values fit
	_ = binary.Write(&buf, le, uint32(w.SampleRate))                   //nolint:gosec // fixture values fit
	_ = binary.Write(&buf, le, uint32(w.SampleRate*w.Channels*width)) //nolint:gosec // fixture values fit
	_ = binary.Write(&buf, le, uint16(w.Channels*width))               //nolint:gosec // fixture values fit
	_ = binary.Write(&buf, le, uint16(w.BitDepth))                     //nolint:gosec // fixture values fit
	buf.WriteString("data")
	_ = binary.Write(&buf, le, uint32(data.Len())) //nolint:gosec // fixture sizes are small
	buf.Write(data.Bytes())
	return buf.Bytes()
}

// PCM16 encodes samples as signed 16-bit little-endian PCM, the layout the
// pack stores audio in.
func PCM16(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s)) //nolint:gosec // two's complement reinterpretation
	}
	return out
}
