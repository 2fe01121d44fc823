// Package rimage decodes robot image captures into middleware images.
package rimage

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/spotbridge/spotapi"
)

// ErrUnknownPixelFormat is returned for pixel formats with no buffer layout.
var ErrUnknownPixelFormat = errors.New("unknown pixel format")

// BufferLayout is the shape of one pixel in a decoded buffer.
type BufferLayout struct {
	Channels      int
	BitsPerSample int
}

// Layouts for the supported pixel formats.
var (
	Layout8UC1  = BufferLayout{Channels: 1, BitsPerSample: 8}
	Layout8UC3  = BufferLayout{Channels: 3, BitsPerSample: 8}
	Layout8UC4  = BufferLayout{Channels: 4, BitsPerSample: 8}
	Layout16UC1 = BufferLayout{Channels: 1, BitsPerSample: 16}
)

// BytesPerPixel returns the size of a single pixel.
func (l BufferLayout) BytesPerPixel() int {
	return l.Channels * l.BitsPerSample / 8
}

func (l BufferLayout) String() string {
	return fmt.Sprintf("%dUC%d", l.BitsPerSample, l.Channels)
}

// LayoutForPixelFormat maps a pixel format to its buffer layout. Greyscale and depth 16-bit images
// share a layout; what the samples mean is carried by the image source, not the layout.
func LayoutForPixelFormat(pf spotapi.PixelFormat) (BufferLayout, error) {
	switch pf {
	case spotapi.PixelFormatRGBU8:
		return Layout8UC3, nil
	case spotapi.PixelFormatRGBAU8:
		return Layout8UC4, nil
	case spotapi.PixelFormatGreyscaleU8:
		return Layout8UC1, nil
	case spotapi.PixelFormatGreyscaleU16, spotapi.PixelFormatDepthU16:
		return Layout16UC1, nil
	default:
		return BufferLayout{}, errors.Wrap(ErrUnknownPixelFormat, pf.String())
	}
}
