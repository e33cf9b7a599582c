package resolver

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/erraggy/oasbundle/internal/pathutil"
	"github.com/erraggy/oasbundle/parser"
)

// PathType records how a registry entry's document was obtained.
type PathType string

const (
	// PathTypeFile is a document read from the local filesystem.
	PathTypeFile PathType = "file"
	// PathTypeHTTP is a document fetched over HTTP or HTTPS.
	PathTypeHTTP PathType = "http"
	// PathTypeSynthesized is a document that exists only in memory.
	PathTypeSynthesized PathType = "synthesized"
)

// SyntheticRootName is the file name given to an in-memory root document
// that has no location of its own.
const SyntheticRootName = "$root"

// PathTypeOf classifies a normalized location.
func PathTypeOf(location string) PathType {
	if parser.IsURL(location) {
		return PathTypeHTTP
	}
	if filepath.Base(pathutil.StripHash(location)) == SyntheticRootName {
		return PathTypeSynthesized
	}
	return PathTypeFile
}

// SyntheticRoot returns the location used for an in-memory root document:
// "$root" inside dir, or inside the working directory when dir is empty.
func SyntheticRoot(dir string) string {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	return filepath.Join(dir, SyntheticRootName)
}

// Locate resolves ref against base and returns the normalized absolute target
// location. The "#fragment" of ref is kept as written; a fragment-only ref
// targets base's own document.
//
//	Locate("/specs/api.yaml", "models/pet.yaml#/Pet")  // "/specs/models/pet.yaml#/Pet"
//	Locate("/specs/api.yaml", "#/components")           // "/specs/api.yaml#/components"
//	Locate("https://x.io/a/api.yaml", "../b.yaml")      // "https://x.io/b.yaml"
func Locate(base, ref string) string {
	refPath, hash := splitHash(ref)
	basePath := pathutil.StripHash(base)

	if refPath == "" {
		return basePath + hash
	}

	if parser.IsURL(refPath) {
		return normalizeURL(refPath) + hash
	}
	if strings.HasPrefix(refPath, "file://") {
		if u, err := url.Parse(refPath); err == nil {
			return filepath.Clean(filepath.FromSlash(u.Path)) + hash
		}
	}

	if parser.IsURL(basePath) {
		b, err := url.Parse(basePath)
		if err == nil {
			if r, err := url.Parse(refPath); err == nil {
				return normalizeURL(b.ResolveReference(r).String()) + hash
			}
		}
	}

	p := filepath.FromSlash(decodePercent(refPath))
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(basePath), p)
	}
	return filepath.Clean(p) + hash
}

// AbsLocation makes a user-supplied root location absolute. URLs are
// normalized; file paths are resolved against the working directory.
func AbsLocation(location string) (string, error) {
	if parser.IsURL(location) {
		return normalizeURL(location), nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// IsExternal reports whether ref, as written inside the document at base,
// targets a different document.
func IsExternal(base, ref string) bool {
	return pathutil.StripHash(Locate(base, ref)) != pathutil.StripHash(base)
}

func splitHash(ref string) (string, string) {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i], ref[i:]
	}
	return ref, ""
}

func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// decodePercent undoes URI percent-encoding in file references, leaving
// the path alone when it is not valid percent-encoding.
func decodePercent(p string) string {
	if !strings.Contains(p, "%") {
		return p
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		return decoded
	}
	return p
}
