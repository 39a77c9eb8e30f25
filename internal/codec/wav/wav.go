// Package wav decodes RIFF WAVE files into 16-bit PCM.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/meigma/ipak/internal/codec"
	"github.com/meigma/ipak/internal/layout"
)

// formatPCM is the WAVE format tag of integer PCM.
const formatPCM = 1

// Decoder decodes WAV files. The zero value is ready to use.
type Decoder struct{}

// DecodeAudio implements codec.AudioDecoder. 8, 16, 24 and 32-bit integer
// PCM input is converted to signed 16-bit samples.
func (Decoder) DecodeAudio(r io.ReadSeeker) (codec.Audio, error) {
	d := gowav.NewDecoder(r)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return codec.Audio{}, fmt.Errorf("%w: %v", codec.ErrMalformed, err)
	}
	// The decoder can report header failures only through a nil buffer.
	if buf == nil {
		return codec.Audio{}, fmt.Errorf("%w: not a WAVE file", codec.ErrMalformed)
	}
	if d.WavAudioFormat != formatPCM {
		return codec.Audio{}, fmt.Errorf("%w: WAVE format tag %d is not integer PCM", layout.ErrUnsupportedFormat, d.WavAudioFormat)
	}
	channels := int(d.NumChans)
	if channels < 1 {
		return codec.Audio{}, fmt.Errorf("%w: %d channels", codec.ErrMalformed, channels)
	}
	convert, err := to16(int(d.BitDepth))
	if err != nil {
		return codec.Audio{}, err
	}

	frames, pcm := interleave(buf, channels, convert)
	return codec.Audio{
		Channels:   channels,
		SampleRate: int(d.SampleRate),
		Frames:     frames,
		PCM:        pcm,
	}, nil
}

// interleave converts whole frames of buf to little-endian int16 PCM. A
// trailing partial frame is dropped.
func interleave(buf *audio.IntBuffer, channels int, convert func(int) int16) (frames int, pcm []byte) {
	frames = len(buf.Data) / channels
	samples := buf.Data[:frames*channels]
	pcm = make([]byte, len(samples)*codec.BytesPerSample)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(convert(v))) //nolint:gosec // two's complement reinterpretation
	}
	return frames, pcm
}

// to16 returns a converter from samples of the given bit depth to int16.
func to16(bitDepth int) (func(int) int16, error) {
	switch bitDepth {
	case 8:
		// 8-bit WAVE samples are unsigned.
		return func(v int) int16 { return int16((v - 128) << 8) }, nil //nolint:gosec // range checked by depth
	case 16:
		return func(v int) int16 { return int16(v) }, nil //nolint:gosec // range checked by depth
	case 24:
		return func(v int) int16 { return int16(v >> 8) }, nil //nolint:gosec // range checked by depth
	case 32:
		return func(v int) int16 { return int16(v >> 16) }, nil //nolint:gosec // range checked by depth
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", layout.ErrUnsupportedFormat, bitDepth)
	}
}
