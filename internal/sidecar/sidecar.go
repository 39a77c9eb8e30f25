// Package sidecar reads the optional per-texture configuration file.
//
// A sidecar sits next to its texture with the extension replaced by ".cfg"
// and holds one key=value pair per line:
//
//	format=PVR4A
//	uploadWidth=256
//	maxS=0.5
//	bounds="0 0 10 10 20 20 30 30"
//
// Blank lines and lines starting with '#' are ignored, as are unknown keys.
// Keys not present keep their zero value.
package sidecar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/meigma/ipak/internal/layout"
)

// Ext is the sidecar file extension.
const Ext = ".cfg"

// ErrInvalidConfig is returned for malformed sidecar lines or values.
var ErrInvalidConfig = errors.New("ipak: invalid texture config")

// Config is the parsed content of a sidecar. The zero value is the default
// used when no sidecar exists.
type Config struct {
	// Format is only meaningful when HasFormat is set. An unknown name fails
	// parsing with ErrUnsupportedFormat, but a pack build stores the format
	// decoded from the texture itself and ignores this value.
	Format    layout.PixelFormat
	HasFormat bool

	UploadWidth  int32
	UploadHeight int32
	NumLevels    int32
	WrapS        int32
	WrapT        int32
	MinFilter    int32
	MagFilter    int32
	Aniso        int32
	SrcWidth     int32
	SrcHeight    int32
	MaxS         float32
	MaxT         float32
	NumBounds    int32
	Bounds       [2]layout.Rect
}

// Path returns the sidecar path for a texture path.
func Path(texturePath string) string {
	return strings.TrimSuffix(texturePath, path.Ext(texturePath)) + Ext
}

// Load reads the sidecar for the texture at name within fsys. A missing
// sidecar yields the zero Config and found == false.
func Load(fsys fs.FS, name string) (cfg Config, found bool, err error) {
	f, err := fsys.Open(Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, false, nil
		}
		return Config{}, false, err
	}
	defer f.Close()

	cfg, err = Parse(f)
	if err != nil {
		return Config{}, true, fmt.Errorf("%s: %w", Path(name), err)
	}
	return cfg, true, nil
}

// Parse reads a sidecar from r.
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return Config{}, fmt.Errorf("%w: line %d: missing '='", ErrInvalidConfig, line)
		}
		key = strings.TrimSpace(key)
		value = unquote(strings.TrimSpace(value))
		if err := cfg.set(key, value); err != nil {
			return Config{}, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "format":
		f, err := layout.ParsePixelFormat(value)
		if err != nil {
			return err
		}
		c.Format, c.HasFormat = f, true
		return nil
	case "maxS":
		return parseFloat(key, value, &c.MaxS)
	case "maxT":
		return parseFloat(key, value, &c.MaxT)
	case "bounds":
		return c.setBounds(value)
	}
	if dst := c.intField(key); dst != nil {
		return parseInt(key, value, dst)
	}
	return nil
}

func (c *Config) intField(key string) *int32 {
	switch key {
	case "uploadWidth":
		return &c.UploadWidth
	case "uploadHeight":
		return &c.UploadHeight
	case "numLevels":
		return &c.NumLevels
	case "wrapS":
		return &c.WrapS
	case "wrapT":
		return &c.WrapT
	case "minFilter":
		return &c.MinFilter
	case "magFilter":
		return &c.MagFilter
	case "aniso":
		return &c.Aniso
	case "srcWidth":
		return &c.SrcWidth
	case "srcHeight":
		return &c.SrcHeight
	case "numBounds":
		return &c.NumBounds
	default:
		return nil
	}
}

// setBounds parses eight integers: x0 y0 x1 y1 of the first rectangle, then
// of the second.
func (c *Config) setBounds(value string) error {
	fields := strings.Fields(value)
	if len(fields) != 8 {
		return fmt.Errorf("%w: bounds needs 8 integers, got %d", ErrInvalidConfig, len(fields))
	}
	var vals [8]int32
	for i, f := range fields {
		if err := parseInt("bounds", f, &vals[i]); err != nil {
			return err
		}
	}
	for r := range 2 {
		for p := range 2 {
			c.Bounds[r][p] = [2]int32{vals[r*4+p*2], vals[r*4+p*2+1]}
		}
	}
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func parseInt(key, value string, dst *int32) error {
	v, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, value)
	}
	*dst = int32(v)
	return nil
}

func parseFloat(key, value string, dst *float32) error {
	v, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, value)
	}
	*dst = float32(v)
	return nil
}
