package ipak

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/meigma/ipak/internal/codec"
	"github.com/meigma/ipak/internal/layout"
	"github.com/meigma/ipak/internal/platform"
	"github.com/meigma/ipak/internal/sidecar"
	"github.com/meigma/ipak/internal/sizing"
)

// load decodes every queued asset and appends its payload to the arena.
// It runs after collection so all entry tables precede the payload.
func (b *builder) load(ctx context.Context) error {
	for i, job := range b.jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch job.class {
		case ClassAudio:
			err = b.loadAudio(job)
		case ClassTexture:
			err = b.loadTexture(job)
		default:
			err = fmt.Errorf("no loader for %s entries", job.class)
		}
		if err != nil {
			return err
		}
		b.reportProgress(StageLoading, job.path, i+1, len(b.jobs))
	}
	return nil
}

func (b *builder) loadAudio(job loadJob) error {
	v, err := b.header.Table(ClassAudio).Audio(job.index)
	if err != nil {
		return err
	}

	f, err := platform.OpenFileNoFollow(b.root, filepath.FromSlash(job.path))
	if err != nil {
		return &AssetError{Op: "open", Path: job.path, Err: err}
	}
	defer f.Close()

	audio, err := b.cfg.audioDecoder.DecodeAudio(f)
	if err != nil {
		return &AssetError{Op: "decode", Path: job.path, Err: err}
	}
	want, ok := sizing.MulInt(audio.Channels, codec.BytesPerSample, audio.Frames)
	if !ok || want != len(audio.PCM) {
		return &AssetError{Op: "decode", Path: job.path,
			Err: fmt.Errorf("%w: %d bytes of PCM for %d channels x %d frames", codec.ErrMalformed, len(audio.PCM), audio.Channels, audio.Frames)}
	}

	off, err := b.appendPayload(audio.PCM)
	if err != nil {
		return fmt.Errorf("load %s: %w", job.path, err)
	}
	fields := layout.AudioFields{BytesPerSample: codec.BytesPerSample, DataOffset: off}
	if fields.Channels, err = toInt32(audio.Channels); err != nil {
		return fmt.Errorf("load %s: channels: %w", job.path, err)
	}
	if fields.SampleRate, err = toInt32(audio.SampleRate); err != nil {
		return fmt.Errorf("load %s: sample rate: %w", job.path, err)
	}
	if fields.Frames, err = toInt32(audio.Frames); err != nil {
		return fmt.Errorf("load %s: frames: %w", job.path, err)
	}
	v.SetFields(fields)

	b.log().Debug("loaded audio", "name", v.Name(),
		"channels", audio.Channels, "rate", audio.SampleRate, "frames", audio.Frames)
	return nil
}

func (b *builder) loadTexture(job loadJob) error {
	v, err := b.header.Table(ClassTexture).Texture(job.index)
	if err != nil {
		return err
	}
	if b.cfg.textureExt != "" {
		v.SetName(replaceExt(job.path, b.cfg.textureExt))
	}

	cfg, found, err := sidecar.Load(b.root.FS(), job.path)
	if err != nil {
		return &AssetError{Op: "config", Path: job.path, Err: err}
	}
	if !found {
		b.log().Debug("no texture config, using defaults", "path", job.path)
	}

	f, err := platform.OpenFileNoFollow(b.root, filepath.FromSlash(job.path))
	if err != nil {
		return &AssetError{Op: "open", Path: job.path, Err: err}
	}
	defer f.Close()

	tex, err := b.cfg.textureDecoder.DecodeTexture(f)
	if err != nil {
		return &AssetError{Op: "decode", Path: job.path, Err: err}
	}
	if !tex.Format.Valid() {
		return &AssetError{Op: "decode", Path: job.path, Err: fmt.Errorf("%w: pixel format %d", layout.ErrUnsupportedFormat, tex.Format)}
	}

	fields := textureFields(cfg)
	fields.Format = tex.Format
	if fields.UploadWidth, err = toInt32(tex.Width); err != nil {
		return fmt.Errorf("load %s: width: %w", job.path, err)
	}
	if fields.UploadHeight, err = toInt32(tex.Height); err != nil {
		return fmt.Errorf("load %s: height: %w", job.path, err)
	}
	if fields.NumLevels, err = toInt32(tex.Levels); err != nil {
		return fmt.Errorf("load %s: levels: %w", job.path, err)
	}
	if fields.DataOffset, err = b.appendPayload(tex.Pixels); err != nil {
		return fmt.Errorf("load %s: %w", job.path, err)
	}
	v.SetFields(fields)

	b.log().Debug("loaded texture", "name", v.Name(), "format", tex.Format.String(),
		"width", tex.Width, "height", tex.Height, "levels", tex.Levels)
	return nil
}

// appendPayload copies data into a fresh arena block and returns its
// header-relative offset.
func (b *builder) appendPayload(data []byte) (int32, error) {
	off, err := b.arena.Allocate(len(data))
	if err != nil {
		return 0, err
	}
	copy(b.arena.Bytes()[off:], data)
	return b.header.Rel(off)
}

// textureFields seeds texture metadata from a sidecar. The decoder owns the
// format and dimensions.
func textureFields(cfg sidecar.Config) layout.TextureFields {
	return layout.TextureFields{
		UploadWidth:  cfg.UploadWidth,
		UploadHeight: cfg.UploadHeight,
		NumLevels:    cfg.NumLevels,
		WrapS:        cfg.WrapS,
		WrapT:        cfg.WrapT,
		MinFilter:    cfg.MinFilter,
		MagFilter:    cfg.MagFilter,
		Aniso:        cfg.Aniso,
		SrcWidth:     cfg.SrcWidth,
		SrcHeight:    cfg.SrcHeight,
		MaxS:         cfg.MaxS,
		MaxT:         cfg.MaxT,
		NumBounds:    cfg.NumBounds,
		Bounds:       cfg.Bounds,
	}
}

// replaceExt swaps the extension of a slash-separated path.
func replaceExt(p, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(p, path.Ext(p)) + ext
}

func toInt32(v int) (int32, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrSizeOverflow, v)
	}
	return sizing.ToInt32(v, fmt.Errorf("%w: %d", ErrSizeOverflow, v))
}
