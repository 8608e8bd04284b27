package imagegen

import (
	"encoding/base64"

	"github.com/gabriel-vasile/mimetype"
)

// imageExtensions maps the image types NovelAI returns to file extensions.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Image is one decoded image payload, usually PNG bytes.
type Image []byte

// Base64 returns the standard base64 encoding of the payload.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img)
}

// MIMEType sniffs the payload content.
func (img Image) MIMEType() string {
	return mimetype.Detect(img).String()
}

// IsImage reports whether the payload is a PNG, JPEG or WebP image.
func (img Image) IsImage() bool {
	_, ok := imageExtensions[img.MIMEType()]
	return ok
}

// Extension returns the file extension for the sniffed type, ".bin" when
// nothing better is known.
func (img Image) Extension() string {
	mt := mimetype.Detect(img)
	if ext, ok := imageExtensions[mt.String()]; ok {
		return ext
	}
	if ext := mt.Extension(); ext != "" {
		return ext
	}
	return ".bin"
}

// EncodeImages maps images to their base64 form, preserving order.
func EncodeImages(images []Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.Base64()
	}
	return out
}

// MIMETypes maps images to their sniffed content types, preserving order.
func MIMETypes(images []Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.MIMEType()
	}
	return out
}
