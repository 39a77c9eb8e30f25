package ipak

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/meigma/ipak/internal/platform"
)

// extensionClasses maps lowercase file extensions to the table they feed.
var extensionClasses = map[string]Class{
	"wav": ClassAudio,
	"pvr": ClassTexture,
}

// scanOrder is the order in which classes are collected. Every class gets its
// own pass so each table's entries stay contiguous.
var scanOrder = [...]Class{ClassAudio, ClassTexture}

// ClassOf reports the table a file belongs to, based on the text after the
// last '.' of its base name. Matching is case-insensitive.
func ClassOf(name string) (Class, bool) {
	base := path.Base(filepath.ToSlash(name))
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 {
		return 0, false
	}
	c, ok := extensionClasses[strings.ToLower(base[dot+1:])]
	return c, ok
}

// collect creates the entry skeletons for every class and queues their loads.
func (b *builder) collect(ctx context.Context) error {
	b.reportProgress(StageCollecting, "", 0, 0)
	for _, c := range scanOrder {
		if err := b.scan(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// scan walks the scan root once, adding an entry for each file of class c.
func (b *builder) scan(ctx context.Context, c Class) error {
	t := b.header.Table(c)
	return fs.WalkDir(b.root.FS(), ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && depth(p) > b.cfg.maxDepth {
				b.log().Debug("skipped directory beyond max depth", "path", p)
				return fs.SkipDir
			}
			return nil
		}
		if fc, ok := ClassOf(p); !ok || fc != c {
			return nil
		}

		ok, err := platform.IsRegular(b.root, filepath.FromSlash(p), d)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			b.log().Debug("skipped non-regular file", "path", p)
			return nil
		}

		e, err := t.AddEntry(p)
		if err != nil {
			return fmt.Errorf("add %s entry %s: %w", c, p, err)
		}
		b.jobs = append(b.jobs, loadJob{class: c, index: t.Count() - 1, path: p})
		b.log().Debug("collected asset", "class", c.String(), "path", p, "name", e.Name())
		b.reportProgress(StageCollecting, p, len(b.jobs), 0)
		return nil
	})
}

// depth returns the number of path elements in a slash-separated path.
func depth(p string) int {
	return strings.Count(p, "/") + 1
}
