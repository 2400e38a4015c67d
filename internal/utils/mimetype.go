package utils

import (
	"mime"
	"path/filepath"
)

// DefaultContentType is used when a filename gives no usable hint.
const DefaultContentType = "application/octet-stream"

// ContentTypeByName guesses a MIME type from a filename's extension.
func ContentTypeByName(name string) string {
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		return DefaultContentType
	}
	return ct
}
