// Package attachment recovers display metadata from opaque storage URLs.
//
// The file store prefixes uploads with an upload timestamp, producing
// object names like "api_2025-09-04T14:30:50.602985+00:00_test.txt", and
// appends signing query parameters. Resolve undoes enough of that mangling
// to show a human-readable filename; it never fails, degrading to the
// fallback name "attachment".
package attachment

import "strings"

// Kind classifies an attachment for display purposes.
type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// FallbackName is returned whenever a filename cannot be recovered.
const FallbackName = "attachment"

// knownExtensions are the file extensions recognized when scanning
// underscore-delimited segments for the original filename.
var knownExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg",
	".pdf", ".txt", ".doc", ".xlsx", ".docx", ".zip",
}

// imageExtensions mark an attachment as displayable inline.
var imageExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg",
}

// Resolve extracts a best-effort filename and media kind from an
// attachment URL. It is pure string processing: query parameters are
// stripped, the final path segment is scanned for the original filename
// behind the storage timestamp prefix, and only %20 and %2B are decoded.
func Resolve(rawURL string) (string, Kind) {
	kind := classify(rawURL)
	if rawURL == "" {
		return FallbackName, kind
	}

	withoutQuery, _, _ := strings.Cut(rawURL, "?")
	segment := withoutQuery
	if idx := strings.LastIndex(withoutQuery, "/"); idx >= 0 {
		segment = withoutQuery[idx+1:]
	}
	if segment == "" {
		return FallbackName, kind
	}

	name := segment
	if parts := strings.Split(segment, "_"); len(parts) >= 3 {
		name = recoverFromParts(parts)
	}

	name = strings.ReplaceAll(name, "%20", " ")
	name = strings.ReplaceAll(name, "%2B", "+")
	if name == "" {
		name = FallbackName
	}
	return name, kind
}

// recoverFromParts scans underscore-delimited parts for the first one
// carrying a recognized extension and rejoins from there, so a filename
// containing underscores survives intact. Without a match the last part
// wins.
func recoverFromParts(parts []string) string {
	for i, part := range parts {
		if !strings.Contains(part, ".") {
			continue
		}
		lower := strings.ToLower(part)
		for _, ext := range knownExtensions {
			if strings.Contains(lower, ext) {
				return strings.Join(parts[i:], "_")
			}
		}
	}
	return parts[len(parts)-1]
}

func classify(rawURL string) Kind {
	lower := strings.ToLower(rawURL)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return KindImage
		}
	}
	return KindDocument
}
