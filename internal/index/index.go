// Package index builds and walks the per-table hash chains of a pack.
//
// Each type table owns HashChains bucket heads. An entry lands in bucket
// hash & (HashChains-1); entries sharing a bucket form a singly linked list
// through their next field, terminated by layout.Empty. Lookups walk the
// bucket and compare full canonical names, since neither hash collisions nor
// duplicate names are resolved at build time.
package index

import (
	"errors"
	"fmt"
	"iter"

	"github.com/meigma/ipak/internal/canon"
	"github.com/meigma/ipak/internal/layout"
)

// ErrCorruptChain is returned when a hash chain is out of range, cyclic, or
// does not reach every entry exactly once.
var ErrCorruptChain = errors.New("ipak: corrupt hash chain")

// Bucket returns the bucket of hash.
func Bucket(hash int32) int {
	return int(hash & (layout.HashChains - 1))
}

// Build links every entry of t into its bucket chain.
//
// Entries are linked in increasing index order, each pushed onto the front of
// its bucket, so a chain yields the most recently added entry first. All heads
// are reset first, making Build safe to run more than once.
func Build(t layout.Table) error {
	t.ResetChains()
	for i := range t.Count() {
		e, err := t.Entry(i)
		if err != nil {
			return err
		}
		b := Bucket(e.Hash())
		e.SetNext(t.ChainHead(b))
		t.SetChainHead(b, int32(i)) //nolint:gosec // count fits in int32
	}
	return nil
}

// Chain iterates the entry indices of the bucket holding hash.
//
// The walk stops after Count() steps even if the chain is cyclic, and at the
// first out-of-range link; use Verify to detect either.
func Chain(t layout.Table, hash int32) iter.Seq[int] {
	return func(yield func(int) bool) {
		count := t.Count()
		next := t.ChainHead(Bucket(hash))
		for steps := 0; next != layout.Empty && steps < count; steps++ {
			e, err := t.Entry(int(next))
			if err != nil {
				return
			}
			if !yield(int(next)) {
				return
			}
			next = e.Next()
		}
	}
}

// Lookup iterates the indices of entries whose canonical name matches name,
// most recently added first. name is canonicalized before comparison.
func Lookup(t layout.Table, name string) iter.Seq[int] {
	return func(yield func(int) bool) {
		want, hash := canon.Canonicalize(name)
		for i := range Chain(t, hash) {
			e, err := t.Entry(i)
			if err != nil {
				return
			}
			if e.Hash() != hash || e.Name() != want {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}

// Find returns the first entry matching name, as Lookup would yield it.
func Find(t layout.Table, name string) (int, bool) {
	for i := range Lookup(t, name) {
		return i, true
	}
	return 0, false
}

// Verify checks that every link of t is in range, that no chain is cyclic,
// and that every entry is reachable exactly once from the bucket of its own
// hash.
func Verify(t layout.Table) error {
	count := t.Count()
	seen := make([]bool, count)
	for b := range layout.HashChains {
		next := t.ChainHead(b)
		for steps := 0; next != layout.Empty; steps++ {
			if next < layout.Empty || int(next) >= count {
				return fmt.Errorf("%w: %s bucket %d links to %d, count %d", ErrCorruptChain, t.Class(), b, next, count)
			}
			if steps >= count || seen[next] {
				return fmt.Errorf("%w: %s bucket %d revisits entry %d", ErrCorruptChain, t.Class(), b, next)
			}
			seen[next] = true
			e, err := t.Entry(int(next))
			if err != nil {
				return err
			}
			if Bucket(e.Hash()) != b {
				return fmt.Errorf("%w: %s entry %d with hash %d found in bucket %d", ErrCorruptChain, t.Class(), next, e.Hash(), b)
			}
			next = e.Next()
		}
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: %s entry %d unreachable", ErrCorruptChain, t.Class(), i)
		}
	}
	return nil
}
