// Package canon normalizes resource paths into canonical archive names and
// derives their lookup hashes.
//
// A canonical name is lowercase (ASCII rules only), uses forward slashes and
// is at most MaxLen bytes long. The hash is a polynomial rolling hash
// (h = h*31 + c) over the canonical bytes, so it is stable across platforms
// and locales.
package canon

// NameSize is the size of the on-disk name field, including the NUL terminator.
const NameSize = 64

// MaxLen is the maximum length of a canonical name in bytes.
const MaxLen = NameSize - 1

// Canonicalize converts raw into its canonical form and returns it along with
// its hash. Names longer than MaxLen are truncated silently.
func Canonicalize(raw string) (name string, hash int32) {
	n := len(raw)
	if n > MaxLen {
		n = MaxLen
	}
	buf := make([]byte, n)
	for i := range n {
		c := raw[i]
		if c == '\\' {
			c = '/'
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		buf[i] = c
		hash = hash*31 + int32(c)
	}
	return string(buf), hash
}

// Hash returns the hash of an already canonical name.
// It does not normalize name; use Canonicalize for raw input.
func Hash(name string) int32 {
	var h int32
	for i := range len(name) {
		h = h*31 + int32(name[i])
	}
	return h
}
