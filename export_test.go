package ipak

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2/content/oci"
)

func fetchAll(t *testing.T, store *oci.Store, desc ocispec.Descriptor) []byte {
	t.Helper()
	rc, err := store.Fetch(context.Background(), desc)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestExportLayout(t *testing.T) {
	t.Parallel()

	p := buildFixture(t, map[string][]byte{
		"clip.wav": monoWAV(1, 2, 3),
		"tex.pvr":  pvr4(8, 8, []byte{4, 5}),
	})
	dir := t.TempDir()
	ctx := context.Background()

	desc, err := p.ExportLayout(ctx, dir, "v1",
		ExportWithTitle("game.pak"),
		ExportWithAnnotations(map[string]string{ocispec.AnnotationCreated: "2024-01-01T00:00:00Z"}))
	require.NoError(t, err)
	assert.Equal(t, ocispec.MediaTypeImageManifest, desc.MediaType)
	assert.Equal(t, ArtifactType, desc.ArtifactType)

	store, err := oci.New(dir)
	require.NoError(t, err)
	resolved, err := store.Resolve(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, desc.Digest, resolved.Digest)

	var manifest ocispec.Manifest
	require.NoError(t, json.Unmarshal(fetchAll(t, store, resolved), &manifest))
	assert.Equal(t, ArtifactType, manifest.ArtifactType)
	assert.Equal(t, ocispec.MediaTypeEmptyJSON, manifest.Config.MediaType)
	assert.Equal(t, "2024-01-01T00:00:00Z", manifest.Annotations[ocispec.AnnotationCreated])
	require.Len(t, manifest.Layers, 1)

	layer := manifest.Layers[0]
	assert.Equal(t, MediaTypePack, layer.MediaType)
	assert.Equal(t, p.Digest(), layer.Digest)
	assert.Equal(t, int64(p.Len()), layer.Size)
	assert.Equal(t, "game.pak", layer.Annotations[ocispec.AnnotationTitle])

	ar, err := Load(fetchAll(t, store, layer))
	require.NoError(t, err)
	require.NoError(t, ar.Verify())
	_, err = ar.FindAudio("clip.wav")
	require.NoError(t, err)
}

func TestExportLayoutTwice(t *testing.T) {
	t.Parallel()

	p := buildFixture(t, map[string][]byte{"clip.wav": monoWAV(1)})
	dir := t.TempDir()
	ctx := context.Background()
	fixed := ExportWithAnnotations(map[string]string{ocispec.AnnotationCreated: "2024-01-01T00:00:00Z"})

	first, err := p.ExportLayout(ctx, dir, "", fixed)
	require.NoError(t, err)
	second, err := p.ExportLayout(ctx, dir, "stable", fixed)
	require.NoError(t, err)
	assert.Equal(t, first.Digest, second.Digest)

	store, err := oci.New(dir)
	require.NoError(t, err)
	for _, tag := range []string{DefaultTag, "stable"} {
		got, err := store.Resolve(ctx, tag)
		require.NoError(t, err, tag)
		assert.Equal(t, first.Digest, got.Digest, tag)
	}
}

func TestBuildManifestSetsCreated(t *testing.T) {
	t.Parallel()

	config := ocispec.Descriptor{MediaType: ocispec.MediaTypeEmptyJSON}
	layer := ocispec.Descriptor{MediaType: MediaTypePack}
	m := buildManifest(&config, &layer, map[string]string{"k": "v"})

	assert.Equal(t, 2, m.SchemaVersion)
	assert.Equal(t, "v", m.Annotations["k"])
	assert.NotEmpty(t, m.Annotations[ocispec.AnnotationCreated])
	assert.Equal(t, []ocispec.Descriptor{layer}, m.Layers)
}
