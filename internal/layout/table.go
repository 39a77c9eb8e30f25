package layout

import (
	"fmt"

	"github.com/meigma/ipak/internal/arena"
	"github.com/meigma/ipak/internal/sizing"
)

// Table field offsets.
const (
	tableCount      = 0
	tableStructSize = 4
	tableOffset     = 8
	tableChains     = 12
)

// Table is a view of one type table: its entry count, the location of its
// entry run and its hash chain heads.
//
// Entries of a table occupy contiguous fixed-size slots. Entry i lives at
// TableOffset() + i*StructSize() and never moves once added.
type Table struct {
	a     *arena.Arena
	base  int
	off   int
	class Class
}

func (t Table) reset() {
	t.a.PutInt32(t.off+tableCount, 0)
	t.a.PutInt32(t.off+tableStructSize, 0)
	t.a.PutInt32(t.off+tableOffset, Empty)
	t.ResetChains()
}

// Class returns the class of entries stored in the table.
func (t Table) Class() Class {
	return t.class
}

// Count returns the number of entries.
func (t Table) Count() int {
	return int(t.a.Int32(t.off + tableCount))
}

// StructSize returns the size of one entry, or zero before the first entry.
func (t Table) StructSize() int {
	return int(t.a.Int32(t.off + tableStructSize))
}

// TableOffset returns the header-relative offset of entry 0, or -1 before
// the first entry.
func (t Table) TableOffset() int {
	return int(t.a.Int32(t.off + tableOffset))
}

// ChainHead returns the first entry index of bucket, or Empty.
func (t Table) ChainHead(bucket int) int32 {
	return t.a.Int32(t.off + tableChains + bucket*4)
}

// SetChainHead sets the first entry index of bucket.
func (t Table) SetChainHead(bucket int, idx int32) {
	t.a.PutInt32(t.off+tableChains+bucket*4, idx)
}

// ResetChains empties every bucket.
func (t Table) ResetChains() {
	for b := range HashChains {
		t.SetChainHead(b, Empty)
	}
}

// AddEntry appends a skeleton entry named raw and returns its view.
//
// The first entry fixes the table offset and struct size. Later entries must
// land directly after the previous one; if anything else was allocated in
// between, AddEntry fails with ErrLayout.
func (t Table) AddEntry(raw string) (Entry, error) {
	size := EntrySize(t.class)
	count := t.Count()
	next := t.a.Len()
	if count > 0 {
		want := t.base + t.TableOffset() + count*t.StructSize()
		if next != want {
			return Entry{}, fmt.Errorf("%w: %s entry %d would be at offset %d, want %d", ErrLayout, t.class, count, next-t.base, want-t.base)
		}
	}
	rel, err := sizing.ToInt32(next-t.base, fmt.Errorf("%w: entry offset %d", ErrLayout, next-t.base))
	if err != nil {
		return Entry{}, err
	}
	off, err := t.a.Allocate(size)
	if err != nil {
		return Entry{}, err
	}
	if count == 0 {
		t.a.PutInt32(t.off+tableStructSize, int32(size))
		t.a.PutInt32(t.off+tableOffset, rel)
	}
	t.a.PutInt32(t.off+tableCount, int32(count+1)) //nolint:gosec // bounded by arena capacity

	n := Entry{a: t.a, off: off}
	n.SetName(raw)
	n.SetNext(Empty)
	return n, nil
}

// EntryOffset returns the arena offset of entry i.
func (t Table) EntryOffset(i int) (int, error) {
	if i < 0 || i >= t.Count() {
		return 0, fmt.Errorf("%w: %s entry %d out of range [0, %d)", ErrInvalidArchive, t.class, i, t.Count())
	}
	off := t.base + t.TableOffset() + i*t.StructSize()
	if !t.a.Contains(off, t.StructSize()) {
		return 0, fmt.Errorf("%w: %s entry %d at offset %d exceeds archive size", ErrInvalidArchive, t.class, i, off-t.base)
	}
	return off, nil
}

// Entry returns the base view of entry i.
func (t Table) Entry(i int) (Entry, error) {
	off, err := t.EntryOffset(i)
	if err != nil {
		return Entry{}, err
	}
	return Entry{a: t.a, off: off}, nil
}

// Audio returns the audio view of entry i.
func (t Table) Audio(i int) (Audio, error) {
	if t.class != ClassAudio {
		return Audio{}, fmt.Errorf("ipak: audio view of %s table", t.class)
	}
	e, err := t.Entry(i)
	if err != nil {
		return Audio{}, err
	}
	return Audio{Entry: e}, nil
}

// Texture returns the texture view of entry i.
func (t Table) Texture(i int) (Texture, error) {
	if t.class != ClassTexture {
		return Texture{}, fmt.Errorf("ipak: texture view of %s table", t.class)
	}
	e, err := t.Entry(i)
	if err != nil {
		return Texture{}, err
	}
	return Texture{Entry: e}, nil
}

// Validate checks that the table metadata describes entries that lie within
// the arena. Chain links are checked separately by the index package.
func (t Table) Validate() error {
	count := t.Count()
	if count < 0 {
		return fmt.Errorf("%w: %s table count %d", ErrInvalidArchive, t.class, count)
	}
	for b := range HashChains {
		if h := t.ChainHead(b); h < Empty || int(h) >= count {
			return fmt.Errorf("%w: %s bucket %d head %d out of range", ErrInvalidArchive, t.class, b, h)
		}
	}
	if count == 0 {
		return nil
	}
	if size := t.StructSize(); size != EntrySize(t.class) {
		return fmt.Errorf("%w: %s struct size %d, want %d", ErrInvalidArchive, t.class, size, EntrySize(t.class))
	}
	span, ok := sizing.MulInt(count, t.StructSize())
	if !ok || t.TableOffset() < HeaderSize || !t.a.Contains(t.base+t.TableOffset(), span) {
		return fmt.Errorf("%w: %s table at offset %d with %d entries exceeds archive size", ErrInvalidArchive, t.class, t.TableOffset(), count)
	}
	return nil
}
