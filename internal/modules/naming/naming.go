// Package naming derives on-disk filenames for fetched images.
package naming

import (
	"net/url"
	"path"
	"strings"
)

// DefaultFilename is used when the URL path has no usable last segment.
const DefaultFilename = "downloaded_image.jpg"

// Sanitize returns DefaultFilename for empty or whitespace-only names and
// name unchanged otherwise.
func Sanitize(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultFilename
	}
	return name
}

// FromURL picks the last path segment of rawURL and, when that segment has
// no dot, appends the subtype of contentType as the extension.
func FromURL(rawURL, contentType string) string {
	filename := Sanitize(lastSegment(rawURL))
	if !strings.Contains(filename, ".") {
		if ext := Extension(contentType); ext != "" {
			filename += "." + ext
		}
	}
	return filename
}

// Extension returns the text after the last "/" of a media type, without
// parameters. "image/png; q=1" gives "png".
func Extension(contentType string) string {
	i := strings.LastIndex(contentType, "/")
	if i < 0 {
		return ""
	}
	ext := contentType[i+1:]
	if j := strings.Index(ext, ";"); j >= 0 {
		ext = ext[:j]
	}
	return strings.TrimSpace(ext)
}

// lastSegment returns the final path segment in its escaped form, so
// "%2F" and "%00" stay literal. A segment that decodes to whitespace only
// is treated as missing.
func lastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	p := u.EscapedPath()
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	seg := path.Base(p)
	if decoded, err := url.PathUnescape(seg); err == nil && strings.TrimSpace(decoded) == "" {
		return ""
	}
	return seg
}
