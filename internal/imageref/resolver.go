// Package imageref turns stored image-host links into proxy URLs sized for
// list thumbnails and zoomed previews.
package imageref

import (
	"regexp"
	"strings"

	"aduan/internal/report"
)

// DefaultProxyHost serves resized renditions of hosted files.
const DefaultProxyHost = "lh3.googleusercontent.com"

// Rendition sizes appended to the proxy URL.
const (
	thumbnailSize = "s400"
	zoomSize      = "s1000"
)

// PlaceholderDataURI is the inline graphic a consumer shows when a derived
// URL fails to load. Consumers must not retry the failed URL afterwards.
const PlaceholderDataURI = `data:image/svg+xml;utf8,<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64" viewBox="0 0 24 24" fill="none" stroke="%2394a3b8" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><rect x="3" y="3" width="18" height="18" rx="2" ry="2"></rect><circle cx="8.5" cy="8.5" r="1.5"></circle><polyline points="21 15 16 10 5 21"></polyline></svg>`

var (
	pathIDPattern  = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	queryIDPattern = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
)

// Resolved holds both derived URLs for one stored link.
type Resolved struct {
	Thumbnail string `json:"thumbnailUrl"`
	Zoom      string `json:"zoomUrl"`
}

// Resolver derives proxy URLs against a fixed host.
type Resolver struct {
	host string
}

// NewResolver creates a resolver for host. An empty host uses DefaultProxyHost.
func NewResolver(host string) *Resolver {
	host = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://"), "/")
	if host == "" {
		host = DefaultProxyHost
	}
	return &Resolver{host: host}
}

// FileID extracts the hosted file identifier from a /d/<id> path segment or
// an id=<id> query parameter.
func FileID(url string) (string, bool) {
	if m := pathIDPattern.FindStringSubmatch(url); m != nil {
		return m[1], true
	}
	if m := queryIDPattern.FindStringSubmatch(url); m != nil {
		return m[1], true
	}
	return "", false
}

// Thumbnail returns the small rendition URL. Links without a recognisable id
// are returned unchanged and empty input gives empty output.
func (r *Resolver) Thumbnail(url string) string {
	return r.rendition(url, thumbnailSize)
}

// Zoom returns the large rendition URL, with the same fallbacks as Thumbnail.
func (r *Resolver) Zoom(url string) string {
	return r.rendition(url, zoomSize)
}

// Resolve returns both renditions. Sentinel values resolve to empty URLs.
func (r *Resolver) Resolve(url string) Resolved {
	if !IsHosted(url) {
		return Resolved{}
	}
	return Resolved{Thumbnail: r.Thumbnail(url), Zoom: r.Zoom(url)}
}

func (r *Resolver) rendition(url, size string) string {
	if url == "" {
		return ""
	}
	id, ok := FileID(url)
	if !ok {
		return url
	}
	return "https://" + r.host + "/d/" + id + "=" + size
}

// IsHosted reports whether v looks like a real link rather than empty text or
// one of the image sentinels.
func IsHosted(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || v == report.ImageNone || v == report.ImageUploading {
		return false
	}
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}
