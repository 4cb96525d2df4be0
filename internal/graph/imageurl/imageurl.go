// Package imageurl composes image transformation URLs for asset nodes and
// provides the computed "url" schema resolver registered once all assets
// exist.
package imageurl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sitegraph-io/sitegraph/internal/store"
)

// Format is a supported output image format.
type Format string

// Supported output formats.
const (
	FormatGIF  Format = "gif"
	FormatJPG  Format = "jpg"
	FormatPJPG Format = "pjpg"
	FormatPNG  Format = "png"
	FormatPNG8 Format = "png8"
	FormatWebP Format = "webp"
)

// ParseFormat maps a format string, case-insensitively, to a supported
// output format. Unrecognized strings report ok=false and leave the
// format unset downstream, silently.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(s) {
	case "gif":
		return FormatGIF, true
	case "jpg", "jpeg":
		return FormatJPG, true
	case "pjpg", "pjpeg":
		return FormatPJPG, true
	case "png":
		return FormatPNG, true
	case "png8":
		return FormatPNG8, true
	case "webp":
		return FormatWebP, true
	default:
		return "", false
	}
}

// FormatForMediaType selects the output format for automatic format mode
// from the asset's stored media type. Media types without a mapping leave
// the format unset, silently.
func FormatForMediaType(mediaType string) (Format, bool) {
	switch mediaType {
	case "image/gif":
		return FormatGIF, true
	case "image/jpeg":
		return FormatJPG, true
	case "image/png":
		return FormatPNG, true
	default:
		return "", false
	}
}

// Builder accumulates transformation parameters onto a base asset URL.
// Parameters are emitted in the order applied; later settings of the same
// parameter override earlier ones downstream, so application order is part
// of the contract.
type Builder struct {
	base   string
	params []param
}

type param struct {
	key   string
	value string
}

// New creates a Builder over an asset's stored base URL.
func New(base string) *Builder {
	return &Builder{base: base}
}

func (b *Builder) set(key, value string) *Builder {
	for i := range b.params {
		if b.params[i].key == key {
			b.params[i].value = value
			return b
		}
	}
	b.params = append(b.params, param{key: key, value: value})
	return b
}

// Width sets the output width in pixels.
func (b *Builder) Width(w int) *Builder { return b.set("w", strconv.Itoa(w)) }

// Height sets the output height in pixels.
func (b *Builder) Height(h int) *Builder { return b.set("h", strconv.Itoa(h)) }

// Format sets the output format.
func (b *Builder) Format(f Format) *Builder { return b.set("fm", string(f)) }

// Lossless selects the compression mode: true is lossless, false lossy.
func (b *Builder) Lossless(lossless bool) *Builder {
	return b.set("lossless", strconv.FormatBool(lossless))
}

// Quality sets the compression quality.
func (b *Builder) Quality(q int) *Builder { return b.set("q", strconv.Itoa(q)) }

// DPR sets the device pixel ratio.
func (b *Builder) DPR(dpr int) *Builder { return b.set("dpr", strconv.Itoa(dpr)) }

// URL returns the composed URL.
func (b *Builder) URL() string {
	if len(b.params) == 0 {
		return b.base
	}
	var sb strings.Builder
	sb.WriteString(b.base)
	sep := "?"
	if strings.Contains(b.base, "?") {
		sep = "&"
	}
	for _, p := range b.params {
		sb.WriteString(sep)
		sb.WriteString(p.key)
		sb.WriteString("=")
		sb.WriteString(p.value)
		sep = "&"
	}
	return sb.String()
}

// Resolver returns the computed "url" field resolver for asset nodes.
// All arguments are optional: width, height (int), automaticFormat,
// lossless (bool), format (string), quality, dpr (int). Application order
// is fixed: dimensions, then format selection (automatic takes precedence
// over explicit), then compression, then quality, then dpr.
func Resolver() store.Resolver {
	return func(node store.Node, args map[string]any) (any, error) {
		base, _ := node.Fields["url"].(string)
		if base == "" {
			return nil, fmt.Errorf("asset %s has no url", node.ID)
		}
		mediaType, _ := node.Fields["media_type"].(string)

		b := New(base)
		if w, ok := argInt(args, "width"); ok {
			b.Width(w)
		}
		if h, ok := argInt(args, "height"); ok {
			b.Height(h)
		}

		if auto, _ := argBool(args, "automaticFormat"); auto {
			if f, ok := FormatForMediaType(mediaType); ok {
				b.Format(f)
			}
		} else if s, ok := argString(args, "format"); ok {
			if f, ok := ParseFormat(s); ok {
				b.Format(f)
			}
		}

		if lossless, ok := argBool(args, "lossless"); ok {
			b.Lossless(lossless)
		}
		if q, ok := argInt(args, "quality"); ok {
			b.Quality(q)
		}
		if dpr, ok := argInt(args, "dpr"); ok {
			b.DPR(dpr)
		}
		return b.URL(), nil
	}
}

// Argument values may arrive as native ints or as float64/string after a
// JSON round trip.
func argInt(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func argBool(args map[string]any, key string) (bool, bool) {
	switch v := args[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	default:
		return false, false
	}
}

func argString(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok && s != ""
}
