// Package imagemeta probes image dimensions without decoding pixel data.
package imagemeta

import (
	"fmt"
	"image"
	"image/color"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// #region shape

// Shape is the channel count and pixel dimensions of an image on disk.
type Shape struct {
	Channels int `json:"channels"`
	Height   int `json:"height"`
	Width    int `json:"width"`
}

// #endregion shape

// #region cache

// Cache stores probed shapes per path. Lookups during one dataset-creation
// call hit the same frames repeatedly, so even a plain map saves a lot of
// disk traffic. Implementations are not required to be safe for concurrent
// use; the dataset pipeline is single-threaded.
type Cache interface {
	Get(path string) (Shape, bool)
	Put(path string, s Shape)
}

// MapCache is an unbounded in-memory Cache. Its lifetime is whatever the
// caller gives it, typically one dataset-creation call.
type MapCache struct {
	shapes map[string]Shape
}

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{shapes: make(map[string]Shape)}
}

func (c *MapCache) Get(path string) (Shape, bool) {
	s, ok := c.shapes[path]
	return s, ok
}

func (c *MapCache) Put(path string, s Shape) {
	c.shapes[path] = s
}

// #endregion cache

// #region reader

// Reader probes image shapes through an injectable cache.
type Reader struct {
	cache Cache
}

// NewReader wraps cache; a nil cache gets a fresh MapCache.
func NewReader(cache Cache) *Reader {
	if cache == nil {
		cache = NewMapCache()
	}
	return &Reader{cache: cache}
}

// Shape returns the image's channel count, height and width. Only the
// header is decoded, so large frames cost a few hundred bytes of I/O.
func (r *Reader) Shape(path string) (Shape, error) {
	if s, ok := r.cache.Get(path); ok {
		return s, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Shape{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Shape{}, fmt.Errorf("decode image header %s: %w", path, err)
	}

	ch := channels(cfg.ColorModel)
	if format == "png" {
		// DecodeConfig reports RGBAModel for truecolor PNGs with and
		// without alpha, so the IHDR color-type byte decides.
		if c, ok := pngChannels(f); ok {
			ch = c
		}
	}

	s := Shape{
		Channels: ch,
		Height:   cfg.Height,
		Width:    cfg.Width,
	}
	r.cache.Put(path, s)
	return s, nil
}

// pngChannels reads the IHDR color-type byte (offset 25: past the
// signature, chunk length, chunk name, dimensions and bit depth).
func pngChannels(f *os.File) (int, bool) {
	var b [1]byte
	if _, err := f.ReadAt(b[:], 25); err != nil {
		return 0, false
	}
	switch b[0] {
	case 0: // grayscale
		return 1, true
	case 2: // truecolor
		return 3, true
	case 3: // palette
		return 3, true
	case 4: // grayscale with alpha
		return 2, true
	case 6: // truecolor with alpha
		return 4, true
	}
	return 0, false
}

func channels(m color.Model) int {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.YCbCrModel:
		return 3
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return 4
	case color.CMYKModel:
		return 4
	default:
		return 3
	}
}

// #endregion reader
