package naming

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/erraggy/oasbundle/internal/pathutil"
)

// DefaultBase is used when a location has no usable file name.
const DefaultBase = "schema"

// RootToken stands in for the last token of an empty JSON Pointer.
const RootToken = "root"

// Sanitize makes s usable as a component name: diacritics are folded and
// every rune outside [A-Za-z0-9_-] becomes "_".
// Example: "pet store.v2" -> "pet_store_v2"
// Example: "café" -> "cafe"
func Sanitize(s string) string {
	if folded, _, err := transform.String(foldDiacritics(), s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// foldDiacritics decomposes characters and drops the combining marks.
// Transformers carry state, so each call gets its own chain.
func foldDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

func isNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-'
}

// BaseName returns the sanitized file name of location without its
// extension and "#fragment". URLs and OS paths are both accepted.
// Example: "/specs/models/pet.yaml#/Pet" -> "pet"
// Example: "https://example.com/v1/" -> "schema"
func BaseName(location string) string {
	location = pathutil.StripHash(location)
	location = strings.ReplaceAll(location, "\\", "/")
	if i := strings.IndexAny(location, "?"); i >= 0 {
		location = location[:i]
	}

	name := location[strings.LastIndexByte(location, '/')+1:]
	if name == "" {
		return DefaultBase
	}
	if ext := path.Ext(name); ext != "" && len(ext) < len(name) {
		name = name[:len(name)-len(ext)]
	}
	return Sanitize(name)
}

// LastToken returns the sanitized last token of a JSON Pointer, or
// RootToken when the pointer addresses the whole document.
// Example: "#/components/parameters/Id" -> "Id"
func LastToken(pointer string) string {
	tok := pathutil.LastToken(pointer)
	if tok == "" {
		return RootToken
	}
	return Sanitize(tok)
}

// ComponentName proposes the component name for a target: the base name,
// "_", then the last token of its pointer.
// Example: ComponentName("ext", "#/components/parameters/Id") -> "ext_Id"
func ComponentName(base, pointer string) string {
	return base + "_" + LastToken(pointer)
}

// Allocator hands out names that are unique within one container.
// The zero value is not usable; use NewAllocator.
type Allocator struct {
	used map[string]bool
}

// NewAllocator returns an allocator that treats existing as already taken.
func NewAllocator(existing ...string) *Allocator {
	a := &Allocator{used: make(map[string]bool, len(existing))}
	for _, name := range existing {
		a.used[name] = true
	}
	return a
}

// Allocate returns proposed, or proposed with the first free "_2", "_3", ...
// suffix, and marks the result as taken.
func (a *Allocator) Allocate(proposed string) string {
	name := proposed
	for i := 2; a.used[name]; i++ {
		name = proposed + "_" + strconv.Itoa(i)
	}
	a.used[name] = true
	return name
}

// Taken reports whether name has been allocated or pre-registered.
func (a *Allocator) Taken(name string) bool {
	return a.used[name]
}

// Title splits a camelCase identifier into words and title-cases them.
// Example: "requestBodies" -> "Request Bodies"
func Title(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(b.String())
}
