package ipak

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ipak/internal/codec/pvr"
	"github.com/meigma/ipak/internal/layout"
	"github.com/meigma/ipak/internal/testutil"
)

func monoWAV(samples ...int) []byte {
	return testutil.WAV{Channels: 1, SampleRate: 44100, BitDepth: 16, Samples: samples}.Bytes()
}

func pvr4(width, height uint32, pixels []byte) []byte {
	return testutil.PVR{
		Width:      width,
		Height:     height,
		NumMipmaps: 1,
		PixelType:  pvr.TypePVRTC4,
		Alpha:      true,
		Data:       pixels,
	}.Bytes()
}

func TestBuildEmptyRoot(t *testing.T) {
	t.Parallel()

	p, err := Build(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, HeaderSize, p.Len())
	for _, c := range layout.Classes {
		assert.Zero(t, p.Count(c), c.String())
	}

	data := p.Bytes()
	assert.Equal(t, Version, int32(binary.LittleEndian.Uint32(data))) //nolint:gosec // reinterpretation
	h, err := layout.HeaderAt(p.arena)
	require.NoError(t, err)
	for _, c := range layout.Classes {
		tbl := h.Table(c)
		assert.Equal(t, int(layout.Empty), tbl.TableOffset())
		for b := range layout.HashChains {
			assert.Equal(t, layout.Empty, tbl.ChainHead(b))
		}
	}

	out := filepath.Join(t.TempDir(), "empty.pak")
	require.NoError(t, p.Save(out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, int64(HeaderSize), info.Size())
}

func TestBuildOneAudioOneTexture(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pixels := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	testutil.WriteFiles(t, dir, map[string][]byte{
		"clip.wav": monoWAV(10, -10, 20),
		"tex.pvr":  pvr4(64, 32, pixels),
	})

	p, err := Build(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, p.Count(ClassAudio))
	require.Equal(t, 1, p.Count(ClassTexture))
	assert.Zero(t, p.Count(ClassRaw))

	h, err := layout.HeaderAt(p.arena)
	require.NoError(t, err)

	// Entry tables precede all payload, audio first.
	audioTable := h.Table(ClassAudio)
	textureTable := h.Table(ClassTexture)
	assert.Equal(t, HeaderSize, audioTable.TableOffset())
	assert.Equal(t, layout.AudioSize, audioTable.StructSize())
	assert.Equal(t, HeaderSize+layout.AudioSize, textureTable.TableOffset())
	assert.Equal(t, layout.TextureSize, textureTable.StructSize())

	ar := p.Archive()
	audio, err := ar.FindAudio("clip.wav")
	require.NoError(t, err)
	assert.Equal(t, "clip.wav", audio.Name)
	assert.Equal(t, int32(1), audio.Channels)
	assert.Equal(t, int32(2), audio.BytesPerSample)
	assert.Equal(t, int32(44100), audio.SampleRate)
	assert.Equal(t, int32(3), audio.Frames)
	payloadStart := int32(HeaderSize + layout.AudioSize + layout.TextureSize)
	assert.Equal(t, payloadStart, audio.DataOffset)
	assert.Equal(t, testutil.PCM16(10, -10, 20), audio.PCM)

	tex, err := ar.FindTexture("tex.pvr")
	require.NoError(t, err)
	assert.Equal(t, FormatPVR4A, tex.Format)
	assert.Equal(t, int32(64), tex.UploadWidth)
	assert.Equal(t, int32(32), tex.UploadHeight)
	assert.Equal(t, int32(2), tex.NumLevels)
	assert.Equal(t, payloadStart+6, tex.DataOffset)
	assert.Equal(t, pixels, p.Bytes()[tex.DataOffset:])

	assert.Equal(t, int(payloadStart)+6+len(pixels), p.Len())
	require.NoError(t, ar.Verify())
}

func TestBuildCaseDuplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"A.wav": monoWAV(1),
		"a.WAV": monoWAV(2),
	})

	p, err := Build(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, p.Count(ClassAudio))

	ar := p.Archive()
	for _, name := range []string{"a.wav", "A.WAV"} {
		got := slices.Collect(ar.Lookup(ClassAudio, name))
		assert.Equal(t, []int{1, 0}, got, name)
	}

	// Walk order is lexical, so "a.WAV" was added last and wins.
	audio, err := ar.FindAudio("a.wav")
	require.NoError(t, err)
	assert.Equal(t, 1, audio.Index)
	assert.Equal(t, testutil.PCM16(2), audio.PCM)
	require.NoError(t, ar.Verify())
}

func TestBuildTextureSidecar(t *testing.T) {
	t.Parallel()

	t.Run("missing sidecar uses defaults", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{"ui/button.pvr": pvr4(16, 16, []byte{9, 9})})

		p, err := Build(context.Background(), dir)
		require.NoError(t, err)

		tex, err := p.Archive().FindTexture("ui/button.pvr")
		require.NoError(t, err)
		assert.Equal(t, FormatPVR4A, tex.Format)
		assert.Equal(t, int32(16), tex.UploadWidth)
		assert.Equal(t, int32(16), tex.UploadHeight)
		assert.Equal(t, int32(2), tex.NumLevels)
		assert.Zero(t, tex.WrapS)
		assert.Zero(t, tex.MinFilter)
		assert.Zero(t, tex.MaxS)
		assert.Zero(t, tex.NumBounds)
		assert.Equal(t, [2]Rect{}, tex.Bounds)
	})

	t.Run("sidecar supplies sampling state", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{
			"ui/button.pvr": pvr4(16, 16, []byte{9, 9}),
			"ui/button.cfg": []byte(`# button
format=565
uploadWidth=999
wrapS=2
wrapT=3
minFilter=4
magFilter=5
aniso=8
srcWidth=15
srcHeight=14
maxS=0.9375
maxT=0.875
numBounds=1
bounds="1 2 3 4 5 6 7 8"
`),
		})

		p, err := Build(context.Background(), dir)
		require.NoError(t, err)

		tex, err := p.Archive().FindTexture("UI\\Button.pvr")
		require.NoError(t, err)
		// Decoded values win over the sidecar.
		assert.Equal(t, FormatPVR4A, tex.Format)
		assert.Equal(t, int32(16), tex.UploadWidth)
		assert.Equal(t, int32(2), tex.WrapS)
		assert.Equal(t, int32(3), tex.WrapT)
		assert.Equal(t, int32(4), tex.MinFilter)
		assert.Equal(t, int32(5), tex.MagFilter)
		assert.Equal(t, int32(8), tex.Aniso)
		assert.Equal(t, int32(15), tex.SrcWidth)
		assert.Equal(t, int32(14), tex.SrcHeight)
		assert.InDelta(t, 0.9375, tex.MaxS, 1e-6)
		assert.InDelta(t, 0.875, tex.MaxT, 1e-6)
		assert.Equal(t, int32(1), tex.NumBounds)
		assert.Equal(t, [2]Rect{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}}, tex.Bounds)
	})

	t.Run("sidecar format is checked but not stored", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{
			"ok.pvr": pvr4(4, 4, []byte{0}),
			"ok.cfg": []byte("format=8888\n"),
		})

		p, err := Build(context.Background(), dir)
		require.NoError(t, err)
		tex, err := p.Archive().FindTexture("ok.pvr")
		require.NoError(t, err)
		assert.Equal(t, FormatPVR4A, tex.Format)

		bad := t.TempDir()
		testutil.WriteFiles(t, bad, map[string][]byte{
			"t.pvr": pvr4(4, 4, []byte{0}),
			"t.cfg": []byte("format=DXT5\n"),
		})

		_, err = Build(context.Background(), bad)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
		var assetErr *AssetError
		require.ErrorAs(t, err, &assetErr)
		assert.Equal(t, "config", assetErr.Op)
	})

	t.Run("invalid sidecar fails the build", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{
			"t.pvr": pvr4(4, 4, []byte{0}),
			"t.cfg": []byte("wrapS=often\n"),
		})

		_, err := Build(context.Background(), dir)
		require.ErrorIs(t, err, ErrInvalidConfig)
		var assetErr *AssetError
		require.ErrorAs(t, err, &assetErr)
		assert.Equal(t, "config", assetErr.Op)
		assert.Equal(t, "t.pvr", assetErr.Path)
	})
}

func TestBuildSkipsUnrelatedFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"readme.txt":     []byte("hello"),
		"Makefile":       []byte("all:"),
		"sounds/.wav":    monoWAV(1),
		"sounds/x.wav.":  []byte("not audio"),
		"sounds/hit.cfg": []byte("wrapS=1\n"),
		"sounds/hit.wav": monoWAV(7),
	})

	p, err := Build(context.Background(), dir)
	require.NoError(t, err)

	ar := p.Archive()
	names := map[string]bool{}
	for _, name := range ar.Names(ClassAudio) {
		names[name] = true
	}
	assert.Equal(t, map[string]bool{"sounds/.wav": true, "sounds/hit.wav": true}, names)
	assert.Zero(t, p.Count(ClassTexture))
}

func TestBuildMaxDepth(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"top.wav":       monoWAV(1),
		"a/one.wav":     monoWAV(2),
		"a/b/two.wav":   monoWAV(3),
		"a/b/c/tri.wav": monoWAV(4),
	})

	p, err := Build(context.Background(), dir, CreateWithMaxDepth(1))
	require.NoError(t, err)

	ar := p.Archive()
	var names []string
	for _, name := range ar.Names(ClassAudio) {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"top.wav", "a/one.wav"}, names)

	p, err = Build(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Count(ClassAudio))
}

func TestBuildSkipsSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{"real.wav": monoWAV(1)})
	if err := os.Symlink(filepath.Join(dir, "real.wav"), filepath.Join(dir, "link.wav")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	p, err := Build(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 1, p.Count(ClassAudio))
	_, err = p.Archive().FindAudio("link.wav")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBuildTextureExt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{"Tex/Wall.pvr": pvr4(8, 8, []byte{1})})

	p, err := Build(context.Background(), dir, CreateWithTextureExt(".tga"))
	require.NoError(t, err)

	ar := p.Archive()
	tex, err := ar.FindTexture("tex/wall.tga")
	require.NoError(t, err)
	assert.Equal(t, "tex/wall.tga", tex.Name)
	_, err = ar.FindTexture("tex/wall.pvr")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, ar.Verify())
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()

	t.Run("capacity", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{"big.wav": monoWAV(make([]int, 1000)...)})

		_, err := Build(context.Background(), dir, CreateWithCapacity(HeaderSize+layout.AudioSize+100))
		require.ErrorIs(t, err, ErrCapacity)
	})

	t.Run("capacity below header", func(t *testing.T) {
		t.Parallel()

		_, err := Build(context.Background(), t.TempDir(), CreateWithCapacity(HeaderSize-1))
		require.ErrorIs(t, err, ErrCapacity)
	})

	t.Run("malformed audio", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{"bad.wav": []byte("definitely not a wave file at all")})

		_, err := Build(context.Background(), dir)
		require.ErrorIs(t, err, ErrMalformed)
		var assetErr *AssetError
		require.ErrorAs(t, err, &assetErr)
		assert.Equal(t, "decode", assetErr.Op)
		assert.Equal(t, "bad.wav", assetErr.Path)
	})

	t.Run("unsupported pixel type", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{
			"odd.pvr": testutil.PVR{Width: 4, Height: 4, PixelType: pvr.TypeI8, Data: []byte{1}}.Bytes(),
		})

		_, err := Build(context.Background(), dir)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		_, err := Build(context.Background(), filepath.Join(t.TempDir(), "nope"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		testutil.WriteFiles(t, dir, map[string][]byte{"a.wav": monoWAV(1)})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Build(ctx, dir)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCreateLeavesOutputOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{"big.wav": monoWAV(make([]int, 1000)...)})
	out := filepath.Join(t.TempDir(), "game.pak")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	_, err := Create(context.Background(), dir, out, CreateWithCapacity(HeaderSize+layout.AudioSize+100))
	require.ErrorIs(t, err, ErrCapacity)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("previous"), got)

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCreateRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string][]byte{
		"sfx/Jump.wav":    monoWAV(100, 200, 300, 400),
		"music/theme.wav": testutil.WAV{Channels: 2, SampleRate: 22050, BitDepth: 16, Samples: []int{1, 2, 3, 4}}.Bytes(),
		"tex/hero.pvr":    pvr4(32, 32, []byte{0xAA, 0xBB}),
		"tex/hero.cfg":    []byte("wrapS=1\n"),
		"tex/ground.pvr":  testutil.PVR{Width: 8, Height: 8, PixelType: pvr.TypeRGB565, Data: []byte{1, 2}}.Bytes(),
		"notes/todo.txt":  []byte("ignored"),
	})
	out := filepath.Join(t.TempDir(), "out", "game.pak")

	var stages []ProgressStage
	p, err := Create(context.Background(), dir, out, CreateWithProgress(func(e ProgressEvent) {
		if len(stages) == 0 || stages[len(stages)-1] != e.Stage {
			stages = append(stages, e.Stage)
		}
	}))
	require.NoError(t, err)
	assert.Equal(t, []ProgressStage{StageCollecting, StageLoading, StageIndexing, StageWriting}, stages)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, p.Bytes(), data)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(packMode), info.Mode().Perm())

	ar, err := Open(out)
	require.NoError(t, err)
	require.NoError(t, ar.Verify())
	assert.Equal(t, Version, ar.Version())
	assert.Equal(t, 2, ar.Count(ClassAudio))
	assert.Equal(t, 2, ar.Count(ClassTexture))

	jump, err := ar.FindAudio("SFX\\JUMP.WAV")
	require.NoError(t, err)
	assert.Equal(t, testutil.PCM16(100, 200, 300, 400), jump.PCM)

	theme, err := ar.FindAudio("music/theme.wav")
	require.NoError(t, err)
	assert.Equal(t, int32(2), theme.Channels)
	assert.Equal(t, int32(2), theme.Frames)
	assert.Equal(t, testutil.PCM16(1, 2, 3, 4), theme.PCM)

	hero, err := ar.FindTexture("tex/hero.pvr")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hero.WrapS)
	assert.Equal(t, []byte{0xAA, 0xBB}, data[hero.DataOffset:hero.DataOffset+2])

	ground, err := ar.FindTexture("tex/ground.pvr")
	require.NoError(t, err)
	assert.Equal(t, Format565, ground.Format)
	assert.Equal(t, int32(1), ground.NumLevels)

	// Rebuilding the same tree yields identical bytes.
	again, err := Build(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, p.Digest(), again.Digest())
}
