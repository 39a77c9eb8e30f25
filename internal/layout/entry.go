package layout

import (
	"bytes"

	"github.com/meigma/ipak/internal/arena"
	"github.com/meigma/ipak/internal/canon"
)

// Name field offsets, shared by every entry struct.
const (
	nameHash = NameSize
	nameNext = NameSize + 4
)

// Entry is a view of the name record at the start of every entry.
type Entry struct {
	a   *arena.Arena
	off int
}

// Offset returns the arena offset of the entry.
func (e Entry) Offset() int {
	return e.off
}

// Name returns the canonical name.
func (e Entry) Name() string {
	field := e.a.Bytes()[e.off : e.off+NameSize]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// Hash returns the stored name hash.
func (e Entry) Hash() int32 {
	return e.a.Int32(e.off + nameHash)
}

// Next returns the index of the next entry on the hash chain, or Empty.
func (e Entry) Next() int32 {
	return e.a.Int32(e.off + nameNext)
}

// SetNext sets the next entry on the hash chain.
func (e Entry) SetNext(idx int32) {
	e.a.PutInt32(e.off+nameNext, idx)
}

// SetName canonicalizes raw and stores the result and its hash.
// The chain link is left untouched.
func (e Entry) SetName(raw string) {
	name, hash := canon.Canonicalize(raw)
	field := e.a.Bytes()[e.off : e.off+NameSize]
	clear(field)
	copy(field, name)
	e.a.PutInt32(e.off+nameHash, hash)
}

// AudioFields holds the class-specific fields of an audio entry.
type AudioFields struct {
	Channels       int32
	BytesPerSample int32
	SampleRate     int32
	Frames         int32
	DataOffset     int32
}

// Audio is a view of an audio entry.
type Audio struct {
	Entry
}

// Fields returns a copy of the audio fields.
func (v Audio) Fields() AudioFields {
	r := fieldReader{a: v.a, off: v.off + NameRecSize}
	return AudioFields{
		Channels:       r.i32(),
		BytesPerSample: r.i32(),
		SampleRate:     r.i32(),
		Frames:         r.i32(),
		DataOffset:     r.i32(),
	}
}

// SetFields stores f.
func (v Audio) SetFields(f AudioFields) {
	w := fieldWriter{a: v.a, off: v.off + NameRecSize}
	w.i32(f.Channels)
	w.i32(f.BytesPerSample)
	w.i32(f.SampleRate)
	w.i32(f.Frames)
	w.i32(f.DataOffset)
}

// Rect is an axis-aligned rectangle given by two corners, each an (x, y) pair.
type Rect [2][2]int32

// TextureFields holds the class-specific fields of a texture entry.
type TextureFields struct {
	Format       PixelFormat
	UploadWidth  int32
	UploadHeight int32
	NumLevels    int32
	WrapS        int32
	WrapT        int32
	MinFilter    int32
	MagFilter    int32
	Aniso        int32
	SrcWidth     int32
	SrcHeight    int32
	MaxS         float32
	MaxT         float32
	NumBounds    int32
	Bounds       [2]Rect
	DataOffset   int32
}

// Texture is a view of a texture entry.
type Texture struct {
	Entry
}

// Fields returns a copy of the texture fields.
func (v Texture) Fields() TextureFields {
	r := fieldReader{a: v.a, off: v.off + NameRecSize}
	f := TextureFields{
		Format:       PixelFormat(r.i32()),
		UploadWidth:  r.i32(),
		UploadHeight: r.i32(),
		NumLevels:    r.i32(),
		WrapS:        r.i32(),
		WrapT:        r.i32(),
		MinFilter:    r.i32(),
		MagFilter:    r.i32(),
		Aniso:        r.i32(),
		SrcWidth:     r.i32(),
		SrcHeight:    r.i32(),
		MaxS:         r.f32(),
		MaxT:         r.f32(),
		NumBounds:    r.i32(),
	}
	for i := range f.Bounds {
		for j := range f.Bounds[i] {
			f.Bounds[i][j][0] = r.i32()
			f.Bounds[i][j][1] = r.i32()
		}
	}
	f.DataOffset = r.i32()
	return f
}

// SetFields stores f.
func (v Texture) SetFields(f TextureFields) {
	w := fieldWriter{a: v.a, off: v.off + NameRecSize}
	w.i32(int32(f.Format))
	w.i32(f.UploadWidth)
	w.i32(f.UploadHeight)
	w.i32(f.NumLevels)
	w.i32(f.WrapS)
	w.i32(f.WrapT)
	w.i32(f.MinFilter)
	w.i32(f.MagFilter)
	w.i32(f.Aniso)
	w.i32(f.SrcWidth)
	w.i32(f.SrcHeight)
	w.f32(f.MaxS)
	w.f32(f.MaxT)
	w.i32(f.NumBounds)
	for i := range f.Bounds {
		for j := range f.Bounds[i] {
			w.i32(f.Bounds[i][j][0])
			w.i32(f.Bounds[i][j][1])
		}
	}
	w.i32(f.DataOffset)
}

// fieldReader walks consecutive 4-byte fields.
type fieldReader struct {
	a   *arena.Arena
	off int
}

func (r *fieldReader) i32() int32 {
	v := r.a.Int32(r.off)
	r.off += 4
	return v
}

func (r *fieldReader) f32() float32 {
	v := r.a.Float32(r.off)
	r.off += 4
	return v
}

type fieldWriter struct {
	a   *arena.Arena
	off int
}

func (w *fieldWriter) i32(v int32) {
	w.a.PutInt32(w.off, v)
	w.off += 4
}

func (w *fieldWriter) f32(v float32) {
	w.a.PutFloat32(w.off, v)
	w.off += 4
}
