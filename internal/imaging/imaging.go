// Package imaging prepares material photos for storage and derives
// thumbnails from them. Stored photos are always JPEG regardless of the
// uploaded format.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension bounds the width and height of a stored photo.
const MaxDimension = 1024

// MaxThumbnailSize bounds the size parameter accepted by Thumbnail.
const MaxThumbnailSize = 512

const (
	photoQuality = 85
	thumbQuality = 75
)

// allowedMIME lists the accepted upload MIME types, checked against the
// sniffed content rather than client headers.
var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Prepare validates an uploaded photo, scales it down to MaxDimension if
// needed and re-encodes it as JPEG. Returns the encoded bytes and the stored
// MIME type.
func Prepare(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading photo: %w", err)
	}

	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, "", fmt.Errorf("unsupported photo format %s, need JPEG or PNG", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding photo: %w", err)
	}

	encoded, err := encodeJPEG(fit(img, MaxDimension), photoQuality)
	if err != nil {
		return nil, "", err
	}
	return encoded, "image/jpeg", nil
}

// Thumbnail renders a stored photo at the given bounding size. Size is
// clamped to [16, MaxThumbnailSize].
func Thumbnail(photo []byte, size int) ([]byte, error) {
	if size < 16 {
		size = 16
	}
	if size > MaxThumbnailSize {
		size = MaxThumbnailSize
	}

	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, fmt.Errorf("decoding stored photo: %w", err)
	}

	return encodeJPEG(fit(img, size), thumbQuality)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales an image so neither dimension exceeds maxDim, preserving the
// aspect ratio. Images already within bounds pass through unchanged.
func fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = h * maxDim / w
	} else {
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
