package constants

import "strings"

// Formats for the declared upload media type.
const (
	PDF     = "PDF"
	IMAGE   = "IMAGE"
	UNKNOWN = "UNKNOWN"
)

// MaxUploadBytes caps uploads at the boundary; larger files never reach the pipeline.
const MaxUploadBytes = 20 << 20

// AllowedExtensions holds the accepted file extensions for document uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// AllowedMediaTypes holds the accepted declared media types for document uploads.
var AllowedMediaTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapMediaTypeToFormat classifies a declared media type.
func MapMediaTypeToFormat(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	switch {
	case mt == "application/pdf" || strings.HasSuffix(mt, "/pdf"):
		return PDF
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	default:
		return UNKNOWN
	}
}

// IsPDF reports whether the declared media type is a PDF.
func IsPDF(mediaType string) bool {
	return MapMediaTypeToFormat(mediaType) == PDF
}

// IsImage reports whether the declared media type is an image.
func IsImage(mediaType string) bool {
	return MapMediaTypeToFormat(mediaType) == IMAGE
}
