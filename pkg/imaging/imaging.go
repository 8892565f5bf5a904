// Package imaging normalizes uploaded profile pictures.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

const (
	AvatarSize    = 500
	AvatarQuality = 85
)

var ErrDecode = errors.New("unsupported or corrupt image")

// Fill decodes a jpeg, png or webp image, scales it to cover a width x
// height box, crops the centre and re-encodes it as JPEG.
func Fill(data []byte, width, height, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w (format %q): %v", ErrDecode, format, err)
	}

	crop := coverRect(src.Bounds(), width, height)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Avatar is Fill with the profile picture defaults.
func Avatar(data []byte) ([]byte, error) {
	return Fill(data, AvatarSize, AvatarSize, AvatarQuality)
}

// coverRect is the largest centred sub-rectangle of b with the aspect
// ratio width:height.
func coverRect(b image.Rectangle, width, height int) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	// Compare w/h against width/height without floats.
	if w*height > h*width {
		cw := h * width / height
		x0 := b.Min.X + (w-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := w * height / width
	y0 := b.Min.Y + (h-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}
