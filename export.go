package ipak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/errdef"
)

// OCI media types for exported packs.
const (
	// ArtifactType identifies a pack manifest.
	ArtifactType = "application/vnd.meigma.ipak.v1"

	// MediaTypePack is the media type of the pack layer.
	MediaTypePack = "application/vnd.meigma.ipak.v1.pak"
)

// DefaultTag is the tag used when ExportLayout is given none.
const DefaultTag = "latest"

// exportConfig holds configuration for OCI layout export.
type exportConfig struct {
	annotations map[string]string
	title       string
}

// ExportOption configures OCI layout export.
type ExportOption func(*exportConfig)

// ExportWithAnnotations adds manifest annotations.
func ExportWithAnnotations(annotations map[string]string) ExportOption {
	return func(cfg *exportConfig) {
		if cfg.annotations == nil {
			cfg.annotations = make(map[string]string, len(annotations))
		}
		maps.Copy(cfg.annotations, annotations)
	}
}

// ExportWithTitle sets the title annotation of the pack layer, usually the
// pack file name.
func ExportWithTitle(title string) ExportOption {
	return func(cfg *exportConfig) {
		cfg.title = title
	}
}

// ExportLayout stores the pack as a single-layer OCI artifact in the OCI
// image layout at dir, creating the layout if needed, and tags the manifest.
//
// Content already present in the layout is reused, so exporting the same
// pack twice only moves the tag.
func (p *Pack) ExportLayout(ctx context.Context, dir, tag string, opts ...ExportOption) (ocispec.Descriptor, error) {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if tag == "" {
		tag = DefaultTag
	}

	store, err := oci.New(dir)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("open oci layout: %w", err)
	}

	// Step 1: empty config blob
	config := []byte("{}")
	configDesc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeEmptyJSON,
		Digest:    digest.FromBytes(config),
		Size:      int64(len(config)),
	}
	if err := pushBlob(ctx, store, configDesc, config); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push config: %w", err)
	}

	// Step 2: pack layer
	data := p.arena.Bytes()
	packDesc := ocispec.Descriptor{
		MediaType: MediaTypePack,
		Digest:    digest.FromBytes(data),
		Size:      int64(len(data)),
	}
	if cfg.title != "" {
		packDesc.Annotations = map[string]string{ocispec.AnnotationTitle: cfg.title}
	}
	if err := pushBlob(ctx, store, packDesc, data); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push pack: %w", err)
	}

	// Step 3: manifest
	manifest := buildManifest(&configDesc, &packDesc, cfg.annotations)
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("encode manifest: %w", err)
	}
	manifestDesc := ocispec.Descriptor{
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Digest:       digest.FromBytes(manifestJSON),
		Size:         int64(len(manifestJSON)),
	}
	if err := pushBlob(ctx, store, manifestDesc, manifestJSON); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push manifest: %w", err)
	}

	// Step 4: tag
	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("tag %q: %w", tag, err)
	}
	return manifestDesc, nil
}

// pushBlob stores content unless the layout already holds it.
func pushBlob(ctx context.Context, store *oci.Store, desc ocispec.Descriptor, content []byte) error {
	exists, err := store.Exists(ctx, desc)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = store.Push(ctx, desc, bytes.NewReader(content))
	if errors.Is(err, errdef.ErrAlreadyExists) {
		return nil
	}
	return err
}

// buildManifest creates an OCI manifest for a pack.
func buildManifest(configDesc, packDesc *ocispec.Descriptor, customAnnotations map[string]string) ocispec.Manifest {
	annotations := make(map[string]string)
	maps.Copy(annotations, customAnnotations)
	if _, ok := annotations[ocispec.AnnotationCreated]; !ok {
		annotations[ocispec.AnnotationCreated] = time.Now().UTC().Format(time.RFC3339)
	}

	return ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       *configDesc,
		Layers:       []ocispec.Descriptor{*packDesc},
		Annotations:  annotations,
	}
}
