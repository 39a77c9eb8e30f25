// Command mkpak bundles the audio and texture assets under a directory into
// a single pack file.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/meigma/ipak"
)

const usageText = "mkpak [options] <scanRootDirectory> <outputFilePath>"

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	if err := app.Run(args); err != nil {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(stderr, msg)
			}
			return exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "mkpak: %v\n", err)
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "mkpak",
		Usage:     "Build a game asset pack from a directory of .wav and .pvr files",
		UsageText: usageText,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "capacity", Value: "100MiB", Usage: "Maximum pack size, e.g. 64MiB", EnvVars: []string{"MKPAK_CAPACITY"}},
			&cli.IntFlag{Name: "max-depth", Value: ipak.DefaultMaxDepth, Usage: "Maximum directory depth below the scan root", EnvVars: []string{"MKPAK_MAX_DEPTH"}},
			&cli.StringFlag{Name: "texture-ext", Usage: "Rename texture entries to this extension, e.g. .tga"},
			&cli.BoolFlag{Name: "verify", Usage: "Re-open the written pack and check every hash chain"},
			&cli.StringFlag{Name: "oci-layout", TakesFile: true, Usage: "Also store the pack as an OCI artifact in this image layout directory"},
			&cli.StringFlag{Name: "oci-tag", Value: ipak.DefaultTag, Usage: "Tag for the OCI artifact"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log every collected and loaded file"},
		},
		Action:         build,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func build(c *cli.Context) error {
	if c.NArg() != 2 {
		fmt.Fprintf(c.App.ErrWriter, "Usage: %s\n", usageText)
		return cli.Exit("", 1)
	}
	scanRoot, out := c.Args().Get(0), c.Args().Get(1)

	capacity, err := parseCapacity(c.String("capacity"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("mkpak: %v", err), 1)
	}

	logger := newLogger(c.App.ErrWriter, c.Bool("verbose"))
	p, err := ipak.Create(c.Context, scanRoot, out,
		ipak.CreateWithCapacity(capacity),
		ipak.CreateWithMaxDepth(c.Int("max-depth")),
		ipak.CreateWithTextureExt(c.String("texture-ext")),
		ipak.CreateWithLogger(logger),
	)
	if err != nil {
		return cli.Exit(fmt.Sprintf("mkpak: %v", err), 1)
	}

	if c.Bool("verify") {
		ar, err := ipak.Open(out)
		if err != nil {
			return cli.Exit(fmt.Sprintf("mkpak: verify: %v", err), 1)
		}
		if err := ar.Verify(); err != nil {
			return cli.Exit(fmt.Sprintf("mkpak: verify: %v", err), 1)
		}
		logger.Info("pack verified", "path", out)
	}

	if layoutDir := c.String("oci-layout"); layoutDir != "" {
		desc, err := p.ExportLayout(c.Context, layoutDir, c.String("oci-tag"), ipak.ExportWithTitle(filepath.Base(out)))
		if err != nil {
			return cli.Exit(fmt.Sprintf("mkpak: export: %v", err), 1)
		}
		logger.Info("exported oci artifact", "layout", layoutDir, "tag", c.String("oci-tag"), "digest", desc.Digest.String())
	}

	fmt.Fprintf(c.App.Writer, "Found %d wavs, %d textures\nWrote %s (%s, %s)\n",
		p.Count(ipak.ClassAudio), p.Count(ipak.ClassTexture),
		out, humanize.IBytes(uint64(p.Len())), p.Digest()) //nolint:gosec // length is non-negative
	return nil
}

// parseCapacity parses a human-readable byte size such as "100MiB".
func parseCapacity(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --capacity %q: %w", s, err)
	}
	if n == 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("invalid --capacity %q: must be between 1 byte and 2GiB", s)
	}
	return int(n), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
