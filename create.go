package ipak

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/ipak/internal/arena"
	"github.com/meigma/ipak/internal/index"
	"github.com/meigma/ipak/internal/layout"
)

// Pack is a fully built pack held in memory.
type Pack struct {
	arena  *arena.Arena
	header layout.Header
}

// Build collects the assets under dir, loads their payloads and links the
// hash index, returning the finished pack.
//
// Audio files (".wav") are collected before textures (".pvr"); extensions
// match case-insensitively and every other file is ignored. Symbolic links
// are not followed. Nothing is written to disk.
//
// The context is checked between files.
func Build(ctx context.Context, dir string, opts ...CreateOption) (*Pack, error) {
	return build(ctx, dir, newCreateConfig(opts))
}

func build(ctx context.Context, dir string, cfg createConfig) (*Pack, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	a := arena.New(cfg.capacity)
	h, err := layout.NewHeader(a)
	if err != nil {
		return nil, err
	}

	b := &builder{cfg: cfg, logger: cfg.logger, root: root, arena: a, header: h}
	b.log().Info("building pack", "dir", dir, "capacity", humanize.IBytes(uint64(a.Cap()))) //nolint:gosec // capacity is positive

	if err := b.collect(ctx); err != nil {
		return nil, err
	}
	b.log().Info("collected assets",
		"audio", h.Table(layout.ClassAudio).Count(),
		"textures", h.Table(layout.ClassTexture).Count())

	if err := b.load(ctx); err != nil {
		return nil, err
	}
	if err := b.index(); err != nil {
		return nil, err
	}

	b.log().Info("pack built", "size", humanize.IBytes(uint64(a.Len()))) //nolint:gosec // length is non-negative
	return &Pack{arena: a, header: h}, nil
}

// Create builds a pack from dir and saves it to path.
//
// The output file is only created once the build has succeeded; on failure
// an existing file at path is left untouched.
func Create(ctx context.Context, dir, path string, opts ...CreateOption) (*Pack, error) {
	cfg := newCreateConfig(opts)
	p, err := build(ctx, dir, cfg)
	if err != nil {
		return nil, err
	}
	reportProgress(cfg.progress, StageWriting, path, uint64(p.Len()), uint64(p.Len()), 0, 0) //nolint:gosec // length is non-negative
	if err := p.Save(path); err != nil {
		return nil, err
	}
	return p, nil
}

// Len returns the pack size in bytes.
func (p *Pack) Len() int {
	return p.arena.Len()
}

// Bytes returns the serialized pack. The slice aliases the pack and must not
// be modified.
func (p *Pack) Bytes() []byte {
	return p.arena.Bytes()
}

// Count returns the number of entries of class c.
func (p *Pack) Count(c Class) int {
	return p.header.Table(c).Count()
}

// Digest returns the sha256 digest of the serialized pack.
func (p *Pack) Digest() digest.Digest {
	return digest.FromBytes(p.arena.Bytes())
}

// WriteTo writes the serialized pack to w.
func (p *Pack) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.arena.Bytes())
	return int64(n), err
}

// Archive returns a read view of the pack.
func (p *Pack) Archive() *Archive {
	return &Archive{arena: p.arena, header: p.header}
}

// builder holds state for pack creation.
type builder struct {
	cfg    createConfig
	logger *slog.Logger
	root   *os.Root
	arena  *arena.Arena
	header layout.Header
	jobs   []loadJob
}

// loadJob is a collected asset waiting for its payload.
type loadJob struct {
	class Class
	index int
	// path is the source path relative to the scan root, as found on disk.
	path string
}

// log returns the logger, falling back to a discard logger if nil.
func (b *builder) log() *slog.Logger {
	if b.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.logger
}

// reportProgress sends a progress event if a callback is configured.
func (b *builder) reportProgress(stage ProgressStage, path string, filesDone, filesTotal int) {
	reportProgress(b.cfg.progress, stage, path,
		uint64(b.arena.Len()), uint64(b.arena.Cap()), //nolint:gosec // arena sizes are non-negative
		filesDone, filesTotal)
}

func reportProgress(fn ProgressFunc, stage ProgressStage, path string, bytesDone, bytesTotal uint64, filesDone, filesTotal int) {
	if fn == nil {
		return
	}
	fn(ProgressEvent{
		Stage:      stage,
		Path:       path,
		BytesDone:  bytesDone,
		BytesTotal: bytesTotal,
		FilesDone:  filesDone,
		FilesTotal: filesTotal,
	})
}

// index links the hash chains of every table.
func (b *builder) index() error {
	for i, c := range layout.Classes {
		t := b.header.Table(c)
		if err := index.Build(t); err != nil {
			return fmt.Errorf("index %s table: %w", c, err)
		}
		b.log().Debug("indexed table", "class", c.String(), "entries", t.Count())
		b.reportProgress(StageIndexing, "", i+1, len(layout.Classes))
	}
	return nil
}
