package ipak

import (
	"fmt"
	"iter"
	"os"

	"github.com/meigma/ipak/internal/arena"
	"github.com/meigma/ipak/internal/index"
	"github.com/meigma/ipak/internal/layout"
	"github.com/meigma/ipak/internal/sizing"
)

// Archive is a read-only view of a serialized pack.
//
// An Archive resolves names the way a game runtime would: canonicalize,
// hash, pick the bucket and walk its chain.
type Archive struct {
	arena  *arena.Arena
	header layout.Header
}

// AudioEntry is an audio entry together with its PCM payload.
type AudioEntry struct {
	Index int
	Name  string
	Hash  int32
	AudioFields

	// PCM aliases the archive data.
	PCM []byte
}

// TextureEntry is a texture entry. Pixel data starts at DataOffset; its
// length depends on the format and is not recorded in the pack.
type TextureEntry struct {
	Index int
	Name  string
	Hash  int32
	TextureFields
}

// Open reads and validates the pack at path.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Load validates data as a pack. The archive aliases data.
func Load(data []byte) (*Archive, error) {
	a := arena.Wrap(data)
	h, err := layout.HeaderAt(a)
	if err != nil {
		return nil, err
	}
	return &Archive{arena: a, header: h}, nil
}

// Version returns the format version stored in the header.
func (ar *Archive) Version() int32 {
	return ar.header.Version()
}

// Len returns the pack size in bytes.
func (ar *Archive) Len() int {
	return ar.arena.Len()
}

// Count returns the number of entries of class c.
func (ar *Archive) Count(c Class) int {
	return ar.header.Table(c).Count()
}

// Lookup yields the indices of class c entries whose canonical name matches
// name, most recently added first.
func (ar *Archive) Lookup(c Class, name string) iter.Seq[int] {
	return index.Lookup(ar.header.Table(c), name)
}

// Names yields the canonical name of every class c entry in table order.
func (ar *Archive) Names(c Class) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		t := ar.header.Table(c)
		for i := range t.Count() {
			e, err := t.Entry(i)
			if err != nil {
				return
			}
			if !yield(i, e.Name()) {
				return
			}
		}
	}
}

// Audio returns audio entry i.
func (ar *Archive) Audio(i int) (AudioEntry, error) {
	v, err := ar.header.Table(ClassAudio).Audio(i)
	if err != nil {
		return AudioEntry{}, err
	}
	f := v.Fields()
	size, ok := sizing.MulInt(int(f.Channels), int(f.BytesPerSample), int(f.Frames))
	if !ok {
		return AudioEntry{}, fmt.Errorf("%w: audio entry %d has negative dimensions", ErrInvalidArchive, i)
	}
	pcm, err := ar.arena.Slice(ar.header.Abs(f.DataOffset), size)
	if err != nil {
		return AudioEntry{}, fmt.Errorf("%w: audio entry %d payload: %w", ErrInvalidArchive, i, err)
	}
	return AudioEntry{Index: i, Name: v.Name(), Hash: v.Hash(), AudioFields: f, PCM: pcm}, nil
}

// Texture returns texture entry i.
func (ar *Archive) Texture(i int) (TextureEntry, error) {
	v, err := ar.header.Table(ClassTexture).Texture(i)
	if err != nil {
		return TextureEntry{}, err
	}
	f := v.Fields()
	if !ar.arena.Contains(ar.header.Abs(f.DataOffset), 0) {
		return TextureEntry{}, fmt.Errorf("%w: texture entry %d data offset %d", ErrInvalidArchive, i, f.DataOffset)
	}
	return TextureEntry{Index: i, Name: v.Name(), Hash: v.Hash(), TextureFields: f}, nil
}

// FindAudio returns the most recently added audio entry named name.
func (ar *Archive) FindAudio(name string) (AudioEntry, error) {
	i, ok := index.Find(ar.header.Table(ClassAudio), name)
	if !ok {
		return AudioEntry{}, fmt.Errorf("%w: audio %q", ErrNotFound, name)
	}
	return ar.Audio(i)
}

// FindTexture returns the most recently added texture entry named name.
func (ar *Archive) FindTexture(name string) (TextureEntry, error) {
	i, ok := index.Find(ar.header.Table(ClassTexture), name)
	if !ok {
		return TextureEntry{}, fmt.Errorf("%w: texture %q", ErrNotFound, name)
	}
	return ar.Texture(i)
}

// Verify checks every hash chain and payload reference in the archive.
func (ar *Archive) Verify() error {
	for _, c := range layout.Classes {
		if err := index.Verify(ar.header.Table(c)); err != nil {
			return fmt.Errorf("%s table: %w", c, err)
		}
	}
	for i := range ar.Count(ClassAudio) {
		if _, err := ar.Audio(i); err != nil {
			return err
		}
	}
	for i := range ar.Count(ClassTexture) {
		if _, err := ar.Texture(i); err != nil {
			return err
		}
	}
	return nil
}
