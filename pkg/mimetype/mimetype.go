// Package mimetype maps file extensions to content types for serving
// stored uploads. Lookup is a pure function over a fixed table; anything
// unknown falls back to the generic binary type.
package mimetype

import "strings"

// DefaultType is returned for extensions not present in the table.
const DefaultType = "application/octet-stream"

var byExtension = map[string]string{
	".txt":  "text/plain",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// Resolve returns the content type for a file extension (leading dot
// included). The match is case-insensitive.
func Resolve(ext string) string {
	if mime, ok := byExtension[strings.ToLower(ext)]; ok {
		return mime
	}
	return DefaultType
}
