package rimage

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"google.golang.org/protobuf/types/known/durationpb"

	"go.viam.com/spotbridge/ros"
	"go.viam.com/spotbridge/spotapi"
	"go.viam.com/spotbridge/timesync"
)

// Decode failure reasons.
const (
	ReasonDecodeFailed    = "decode failed"
	ReasonRawDecodeFailed = "raw decode failed"
	ReasonNotImplemented  = "not implemented"
	ReasonUnknownFormat   = "unknown format"
)

// DecodeError is returned when a capture payload cannot be turned into an image.
type DecodeError struct {
	Format spotapi.ImageFormat
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// A Decoder turns one kind of capture payload into image pixels. The returned image has no header.
type Decoder interface {
	Decode(data []byte, rows, cols int, layout BufferLayout) (*ros.Image, error)
}

var decoders = map[spotapi.ImageFormat]Decoder{
	spotapi.FormatJPEG: jpegDecoder{},
	spotapi.FormatRaw:  rawDecoder{},
	spotapi.FormatRLE:  unimplementedDecoder{format: spotapi.FormatRLE},
}

// DecoderFor returns the decoder for an image format.
func DecoderFor(format spotapi.ImageFormat) Decoder {
	if dec, ok := decoders[format]; ok {
		return dec
	}
	return unknownDecoder{format: format}
}

// DecodeImage decodes a capture into an image stamped in the local clock domain. The frame id is
// the capture's sensor frame, namespaced by robotName when it is not empty.
func DecodeImage(
	ctx context.Context,
	capture *spotapi.ImageCapture,
	robotName string,
	skew *durationpb.Duration,
) (*ros.Image, error) {
	_, span := trace.StartSpan(ctx, "rimage::DecodeImage")
	defer span.End()

	layout, err := LayoutForPixelFormat(capture.Image.PixelFormat)
	if err != nil {
		return nil, errors.Wrap(err, "failed to determine pixel format")
	}

	img, err := DecoderFor(capture.Image.Format).Decode(
		capture.Image.Data, int(capture.Image.Rows), int(capture.Image.Cols), layout)
	if err != nil {
		return nil, err
	}
	img.Header = ros.Header{
		Stamp:   timesync.ApplyClockSkew(capture.AcquisitionTime, skew),
		FrameID: ros.FrameID(robotName, capture.FrameNameImageSensor),
	}
	return img, nil
}

// jpegDecoder decodes JPEG payloads. The payload is a flat byte row whose length is the encoded
// size, and it is always decoded to 3 channel color whatever the requested pixel format. The
// decoded size comes from the JPEG header, so rows and cols are not consulted.
type jpegDecoder struct{}

func (jpegDecoder) Decode(data []byte, _, _ int, _ BufferLayout) (*ros.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Format: spotapi.FormatJPEG, Reason: ReasonDecodeFailed, Err: errors.New("empty payload")}
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: spotapi.FormatJPEG, Reason: ReasonDecodeFailed, Err: err}
	}
	img := toBGR8(decoded)
	if len(img.Data) == 0 {
		return nil, &DecodeError{Format: spotapi.FormatJPEG, Reason: ReasonDecodeFailed, Err: errors.New("no pixels")}
	}
	return img, nil
}

// toBGR8 packs any decoded image into interleaved 8-bit blue/green/red rows.
func toBGR8(src image.Image) *ros.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	step := width * 3
	data := make([]byte, step*height)

	switch img := src.(type) {
	case *image.Gray:
		for y := 0; y < height; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+width]
			for x, v := range row {
				i := y*step + x*3
				data[i], data[i+1], data[i+2] = v, v, v
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				i := y*step + x*3
				data[i], data[i+1], data[i+2] = uint8(b>>8), uint8(g>>8), uint8(r>>8)
			}
		}
	}

	return &ros.Image{
		Height:   uint32(height),
		Width:    uint32(width),
		Encoding: ros.EncodingBGR8,
		Step:     uint32(step),
		Data:     data,
	}
}

// rawDecoder reinterprets the payload as rows x cols pixels. Only 16-bit single channel images
// (depth and 16-bit greyscale) are ever sent uncompressed.
type rawDecoder struct{}

func (rawDecoder) Decode(data []byte, rows, cols int, layout BufferLayout) (*ros.Image, error) {
	// TODO: support raw 8-bit greyscale and color images once the robot can send them.
	if layout != Layout16UC1 {
		return nil, &DecodeError{
			Format: spotapi.FormatRaw,
			Reason: ReasonRawDecodeFailed,
			Err:    errors.Errorf("conversion of %v raw images is %s", layout, ReasonNotImplemented),
		}
	}
	if rows <= 0 || cols <= 0 {
		return nil, &DecodeError{
			Format: spotapi.FormatRaw,
			Reason: ReasonRawDecodeFailed,
			Err:    errors.Errorf("invalid dimensions %dx%d", cols, rows),
		}
	}

	step := cols * layout.BytesPerPixel()
	size := step * rows
	if len(data) < size {
		return nil, &DecodeError{
			Format: spotapi.FormatRaw,
			Reason: ReasonRawDecodeFailed,
			Err:    errors.Errorf("payload has %d bytes, %dx%d %v needs %d", len(data), cols, rows, layout, size),
		}
	}

	pixels := make([]byte, size)
	copy(pixels, data)
	return &ros.Image{
		Height:   uint32(rows),
		Width:    uint32(cols),
		Encoding: ros.Encoding16UC1,
		Step:     uint32(step),
		Data:     pixels,
	}, nil
}

type unimplementedDecoder struct {
	format spotapi.ImageFormat
}

func (d unimplementedDecoder) Decode([]byte, int, int, BufferLayout) (*ros.Image, error) {
	return nil, &DecodeError{
		Format: d.format,
		Reason: ReasonNotImplemented,
		Err:    errors.Errorf("conversion from %v is not implemented", d.format),
	}
}

type unknownDecoder struct {
	format spotapi.ImageFormat
}

func (d unknownDecoder) Decode([]byte, int, int, BufferLayout) (*ros.Image, error) {
	return nil, &DecodeError{Format: d.format, Reason: ReasonUnknownFormat, Err: errors.New(d.format.String())}
}
