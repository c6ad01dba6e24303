package constants

import "strings"

// DocumentKind is the declared kind of an uploaded document.
type DocumentKind string

const (
	IMAGE DocumentKind = "IMAGE"
	PDF   DocumentKind = "PDF"
)

// AllowedExtensions holds the upload extensions accepted by the extraction pipeline.
var AllowedExtensions = map[string]DocumentKind{
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"webp": IMAGE,
	"pdf":  PDF,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToKind returns the document kind for an extension, or "" when unsupported.
func MapExtToKind(ext string) DocumentKind {
	return AllowedExtensions[NormalizeExt(ext)]
}

// MaxUploadBytes caps a single uploaded document.
const MaxUploadBytes = 25 << 20
