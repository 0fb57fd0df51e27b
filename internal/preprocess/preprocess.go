// Package preprocess normalizes uploaded photos for recognition. The tuning
// targets photographed (not scanned) handwritten prescriptions: aggressive
// upscaling, contrast stretch and a hard binarization threshold.
package preprocess

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	_ "image/jpeg"
	_ "image/png"
)

const (
	// Recognition target width: clamp(2x source width, minWidth, maxWidth),
	// defaultWidth when the source width cannot be read.
	minWidth     = 1400
	maxWidth     = 2200
	defaultWidth = 1800

	// visionWidth keeps residual texture for multimodal models.
	visionWidth = 2000

	// binarizeThreshold flattens grayscale to near black/white.
	binarizeThreshold = 180
)

// ForRecognition prepares image bytes for the OCR engine: auto-rotate, resize,
// grayscale, contrast stretch, sharpen, binarize, then re-encode as lossless
// PNG. Undecodable input is returned unchanged rather than failing the
// request; the engine gets to make the final call on the buffer.
func ForRecognition(imageBytes []byte) []byte {
	img, err := decode(imageBytes)
	if err != nil {
		return imageBytes
	}

	img = imaging.Resize(img, recognitionWidth(imageBytes), 0, imaging.Lanczos)
	gray := toGray(imaging.Grayscale(img))
	stretchContrast(gray)
	sharpened := toGray(imaging.Sharpen(gray, 1.0))
	binarize(sharpened, binarizeThreshold)

	return encodePNG(sharpened, imageBytes)
}

// ForVision prepares image bytes for a multimodal model: the same family of
// operations without binarization.
func ForVision(imageBytes []byte) []byte {
	img, err := decode(imageBytes)
	if err != nil {
		return imageBytes
	}

	img = imaging.Resize(img, visionWidth, 0, imaging.Lanczos)
	gray := toGray(imaging.Grayscale(img))
	stretchContrast(gray)
	sharpened := toGray(imaging.Sharpen(gray, 1.0))

	return encodePNG(sharpened, imageBytes)
}

func decode(b []byte) (image.Image, error) {
	return imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
}

// recognitionWidth reads the source width from the header only; a corrupt or
// unreadable header falls back to the default target.
func recognitionWidth(b []byte) int {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil || cfg.Width <= 0 {
		return defaultWidth
	}
	w := cfg.Width * 2
	if w < minWidth {
		return minWidth
	}
	if w > maxWidth {
		return maxWidth
	}
	return w
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// stretchContrast linearly remaps the observed intensity range to 0..255.
func stretchContrast(g *image.Gray) {
	min, max := uint8(255), uint8(0)
	for _, p := range g.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if min >= max {
		return
	}
	scale := 255.0 / float64(max-min)
	for i, p := range g.Pix {
		g.Pix[i] = uint8(float64(p-min)*scale + 0.5)
	}
}

func binarize(g *image.Gray, threshold uint8) {
	for i, p := range g.Pix {
		if p >= threshold {
			g.Pix[i] = 255
		} else {
			g.Pix[i] = 0
		}
	}
}

// encodePNG falls back to the original bytes if encoding fails, mirroring the
// decode-tolerance above.
func encodePNG(img image.Image, original []byte) []byte {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return original
	}
	return buf.Bytes()
}
