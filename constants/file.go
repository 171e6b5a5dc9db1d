package constants

import "strings"

// PDF is the only format the batch consumes.
const PDF = "pdf"

// AllowedExtensions holds the file extensions picked up from the papers directory.
var AllowedExtensions = map[string]struct{}{
	PDF: {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt checks ext (with or without the dot) against AllowedExtensions.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
