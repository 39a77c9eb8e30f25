package ipak

import (
	"log/slog"

	"github.com/meigma/ipak/internal/codec/pvr"
	"github.com/meigma/ipak/internal/codec/wav"
)

// DefaultMaxDepth is the directory nesting limit used when no MaxDepth option is set.
const DefaultMaxDepth = 20

// createConfig holds configuration for pack creation.
type createConfig struct {
	capacity       int
	maxDepth       int
	textureExt     string
	logger         *slog.Logger
	progress       ProgressFunc
	textureDecoder TextureDecoder
	audioDecoder   AudioDecoder
}

// CreateOption configures pack creation.
type CreateOption func(*createConfig)

func newCreateConfig(opts []CreateOption) createConfig {
	cfg := createConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capacity <= 0 {
		cfg.capacity = DefaultCapacity
	}
	if cfg.maxDepth <= 0 {
		cfg.maxDepth = DefaultMaxDepth
	}
	if cfg.textureDecoder == nil {
		cfg.textureDecoder = pvr.Decoder{}
	}
	if cfg.audioDecoder == nil {
		cfg.audioDecoder = wav.Decoder{}
	}
	return cfg
}

// CreateWithCapacity bounds the total pack size in bytes, header included.
// Zero or negative uses DefaultCapacity.
func CreateWithCapacity(n int) CreateOption {
	return func(cfg *createConfig) {
		cfg.capacity = n
	}
}

// CreateWithMaxDepth limits how many directory levels below the scan root
// are visited. Deeper directories are skipped. Zero uses DefaultMaxDepth.
func CreateWithMaxDepth(n int) CreateOption {
	return func(cfg *createConfig) {
		cfg.maxDepth = n
	}
}

// CreateWithTextureExt renames texture entries to use ext (for example
// ".tga") in place of their source extension. Lookups then use the renamed
// path. Empty keeps source names.
//
// Older mkpak builds always stored textures under ".tga" names because the
// runtime requested them that way. Pass ".tga" to produce packs for such
// runtimes; the rename is off by default.
func CreateWithTextureExt(ext string) CreateOption {
	return func(cfg *createConfig) {
		cfg.textureExt = ext
	}
}

// CreateWithLogger sets the logger for build diagnostics.
// If not set, logging is disabled.
func CreateWithLogger(logger *slog.Logger) CreateOption {
	return func(cfg *createConfig) {
		cfg.logger = logger
	}
}

// CreateWithProgress sets a callback to receive progress updates.
func CreateWithProgress(fn ProgressFunc) CreateOption {
	return func(cfg *createConfig) {
		cfg.progress = fn
	}
}

// CreateWithTextureDecoder replaces the PVR texture decoder.
func CreateWithTextureDecoder(d TextureDecoder) CreateOption {
	return func(cfg *createConfig) {
		cfg.textureDecoder = d
	}
}

// CreateWithAudioDecoder replaces the WAV audio decoder.
func CreateWithAudioDecoder(d AudioDecoder) CreateOption {
	return func(cfg *createConfig) {
		cfg.audioDecoder = d
	}
}
