package rimage

import (
	"image"

	"github.com/pkg/errors"

	"go.viam.com/spotbridge/ros"
)

// ToStdImage copies a decoded image into the matching Go image type: NRGBA for color, Gray for
// mono8 and Gray16 for 16UC1.
func ToStdImage(img *ros.Image) (image.Image, error) {
	info, err := ros.InfoForEncoding(img.Encoding)
	if err != nil {
		return nil, err
	}
	width, height, step := int(img.Width), int(img.Height), int(img.Step)
	if step < width*info.BytesPerPixel() {
		return nil, errors.Errorf("step %d is too small for %d %s pixels", step, width, img.Encoding)
	}
	if len(img.Data) < step*height {
		return nil, errors.Errorf("image has %d bytes, expected %d", len(img.Data), step*height)
	}

	bounds := image.Rect(0, 0, width, height)
	switch img.Encoding {
	case ros.EncodingMono8:
		out := image.NewGray(bounds)
		for y := 0; y < height; y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+width], img.Data[y*step:])
		}
		return out, nil
	case ros.Encoding16UC1:
		out := image.NewGray16(bounds)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := y*step + x*2
				hi, lo := img.Data[i+1], img.Data[i]
				if img.IsBigEndian {
					hi, lo = lo, hi
				}
				// Gray16 pixels are big-endian.
				j := y*out.Stride + x*2
				out.Pix[j], out.Pix[j+1] = hi, lo
			}
		}
		return out, nil
	default:
		out := image.NewNRGBA(bounds)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := y*step + x*info.Channels
				j := y*out.Stride + x*4
				out.Pix[j], out.Pix[j+1], out.Pix[j+2] = img.Data[i+2], img.Data[i+1], img.Data[i]
				out.Pix[j+3] = 0xff
				if info.Channels == 4 {
					out.Pix[j+3] = img.Data[i+3]
				}
			}
		}
		return out, nil
	}
}
