package utils

import (
	"bytes"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"mime/multipart"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/logger"
)

const (
	maxImageWidth = 2000
	webpQuality   = 85
)

// ProcessImage resizes oversized uploads and re-encodes them as WebP,
// falling back to JPEG when WebP encoding fails.
func ProcessImage(file multipart.File, filename string) ([]byte, string, error) {
	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", err
	}
	logger.Debug().Str("file", filename).Str("format", format).Msg("processing image")

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	err = webp.Encode(&buf, img, &webp.Options{
		Lossless: false,
		Quality:  webpQuality,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("webp encoding failed, falling back to jpeg")
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: webpQuality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}

	return buf.Bytes(), "image/webp", nil
}

// IsImage verifies simple content type
func IsImage(contentType string) bool {
	return contentType == "image/jpeg" || contentType == "image/png" ||
		contentType == "image/webp" || contentType == "image/jpg"
}
