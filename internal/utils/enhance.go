package utils

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension bounds the longer image side before recognition.
// Larger inputs are scaled down; smaller inputs are left untouched.
const DefaultMaxDimension = 2000

// EnhanceQuality applies a mild contrast and sharpness boost that improves
// recognition on typical photographed documents without distorting clean
// scans.
func EnhanceQuality(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "enhance", Err: errors.New("input image is nil")}
	}
	out := imaging.AdjustContrast(img, 20)
	out = imaging.Sharpen(out, 0.5)
	return out, nil
}

// ResizeIfNeeded scales the image down so that neither side exceeds
// maxDimension, preserving aspect ratio. Images already within bounds are
// returned unchanged; upscaling never happens.
func ResizeIfNeeded(img image.Image, maxDimension int) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("input image is nil")}
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img, nil
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos), nil
}

// PrepareHandwriting preprocesses an image for handwriting recognition:
// grayscale, a strong contrast boost, sharpening, and a slight blur that
// smooths pen strokes into more uniform shapes.
func PrepareHandwriting(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "prepare-handwriting", Err: errors.New("input image is nil")}
	}
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 50)
	out = imaging.Sharpen(out, 1.0)
	out = imaging.Blur(out, 0.5)
	return out, nil
}

// HighContrast pushes the image toward black and white, which helps with
// faint pencil strokes and low-ink prints.
func HighContrast(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "high-contrast", Err: errors.New("input image is nil")}
	}
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 80)
	return out, nil
}

// Invert flips the image colors, recovering light-on-dark writing such as
// chalk or white ink on dark paper.
func Invert(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "invert", Err: errors.New("input image is nil")}
	}
	return imaging.Invert(img), nil
}
