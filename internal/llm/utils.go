package llm

import (
	"encoding/base64"
	"net/http"
)

// MIMEOrSniff returns img.MIMEType, sniffing the data when it is unset.
func (img Image) MIMEOrSniff() string {
	if img.MIMEType != "" {
		return img.MIMEType
	}
	return http.DetectContentType(img.Data)
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL.
func (img Image) DataURL() string {
	return "data:" + img.MIMEOrSniff() + ";base64," + img.Base64()
}
