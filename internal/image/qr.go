package imagepkg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// QROptions controls how a QR code is painted. A nil Background renders
// the light modules transparent.
type QROptions struct {
	Size       int
	Foreground color.Color
	Background color.Color
	Border     bool
}

// GenerateQRImage encodes text at medium error correction and paints it
// into a Size x Size image.
func GenerateQRImage(text string, opt QROptions) (image.Image, error) {
	if text == "" {
		return nil, errors.New("qr: empty payload")
	}
	if opt.Size <= 0 {
		return nil, errors.New("qr: size must be positive")
	}
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = !opt.Border
	q.ForegroundColor = color.Black
	if opt.Foreground != nil {
		q.ForegroundColor = opt.Foreground
	}
	q.BackgroundColor = color.Transparent
	if opt.Background != nil {
		q.BackgroundColor = opt.Background
	}
	return q.Image(opt.Size), nil
}

// GenerateQRPNG returns PNG bytes of a black on white QR code with the
// standard quiet zone.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	img, err := GenerateQRImage(text, QROptions{Size: size, Background: color.White, Border: true})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
