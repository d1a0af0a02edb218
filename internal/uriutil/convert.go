package uriutil

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// PathToURI converts a file system path to a file:// URI.
// Relative paths are made absolute; each segment is percent-encoded and
// Windows drive paths gain a leading slash (C:\proj -> file:///C:/proj).
func PathToURI(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "file://" + strings.Join(segments, "/")
}

// URIToPath converts a file:// URI to a file system path.
// Anything that is not a parseable file URI is returned with a leading
// "file://" removed.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return filepath.FromSlash(trimDriveSlash(strings.TrimPrefix(uri, "file://")))
	}

	p := parsed.Path
	if parsed.Host != "" && parsed.Host != "localhost" {
		p = "//" + parsed.Host + p
	}
	return filepath.FromSlash(trimDriveSlash(p))
}

// trimDriveSlash turns /C:/proj into C:/proj
func trimDriveSlash(p string) string {
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		return p[1:]
	}
	return p
}

// IsRemote reports whether ref points at a network location rather than a file
func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
}

// ResolveReference resolves a reference found in the document at docURI.
// Remote references are returned unchanged. Paths starting with "/" resolve
// against rootURI when it is set, everything else against the document's
// directory. Query strings and fragments are dropped.
func ResolveReference(docURI, rootURI, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if IsRemote(ref) {
		if strings.HasPrefix(ref, "//") {
			return "https:" + ref, true
		}
		return ref, true
	}

	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
		if ref == "" {
			return "", false
		}
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}

	var base string
	switch {
	case strings.HasPrefix(ref, "/") && rootURI != "":
		base = filepath.ToSlash(URIToPath(rootURI))
	case strings.HasPrefix(ref, "/"):
		return PathToURI(ref), true
	default:
		base = path.Dir(filepath.ToSlash(URIToPath(docURI)))
	}

	return PathToURI(filepath.FromSlash(path.Join(base, ref))), true
}
