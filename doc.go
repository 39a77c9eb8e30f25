// Package ipak builds and reads single-file game asset packs.
//
// A pack bundles the audio (".wav") and texture (".pvr") files found under a
// directory tree into one little-endian binary image that a runtime can load
// with a single read and query in place:
//
//	header   version + raw, texture and audio type tables
//	entries  fixed-size metadata structs, one contiguous run per table
//	payload  16-bit PCM and texture pixel data
//
// Each type table carries 256 hash chains. Assets are looked up by their
// canonical name: the path relative to the scan root with '\' replaced by
// '/', ASCII letters lowercased and truncated to [MaxNameLen] bytes. Names
// that collide after canonicalization are all kept; the most recently added
// entry resolves first.
//
// # Building
//
// Build a pack and write it atomically:
//
//	p, err := ipak.Create(ctx, "assets", "game.pak",
//	    ipak.CreateWithCapacity(64<<20),
//	    ipak.CreateWithLogger(logger),
//	)
//
// Textures pick up optional sampling state from a sidecar file next to them
// with the extension replaced by ".cfg".
//
// # Reading
//
//	ar, err := ipak.Open("game.pak")
//	if err != nil {
//	    return err
//	}
//	clip, err := ar.FindAudio("sfx/jump.wav")
//
// # Distribution
//
// [Pack.ExportLayout] stores a pack as a single-layer OCI artifact in an OCI
// image layout directory, ready to be copied to any registry.
package ipak
