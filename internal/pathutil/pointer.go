package pathutil

import (
	"strings"
)

// Parse splits a JSON Pointer into its unescaped reference tokens.
//
// A leading "#" (or anything up to and including the first "#", so a full
// "location#/pointer" string may be passed) is dropped. The empty pointer,
// "#" and "#/" all yield no tokens. Escapes are decoded "~1" first, then "~0",
// per RFC 6901; malformed escapes are passed through unchanged.
func Parse(pointer string) []string {
	if i := strings.IndexByte(pointer, '#'); i >= 0 {
		pointer = pointer[i+1:]
	}
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return nil
	}

	tokens := strings.Split(pointer, "/")
	for i, tok := range tokens {
		tokens[i] = Unescape(tok)
	}
	return tokens
}

// Join appends escaped tokens to a pointer or a "location#pointer" string.
// A "#" is added when path has none, and a single "/" separates each token.
//
//	Join("#", "paths", "/pets")        // "#/paths/~1pets"
//	Join("api.yaml", "definitions")    // "api.yaml#/definitions"
func Join(path string, tokens ...string) string {
	var b strings.Builder
	b.Grow(len(path) + 1 + 8*len(tokens))
	b.WriteString(path)
	if !strings.Contains(path, "#") {
		b.WriteByte('#')
	}
	trailingSlash := strings.HasSuffix(path, "/")
	for _, tok := range tokens {
		if !trailingSlash {
			b.WriteByte('/')
		}
		trailingSlash = false
		b.WriteString(Escape(tok))
	}
	return b.String()
}

// Escape encodes a single reference token: "~" becomes "~0" and "/" becomes "~1".
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// Unescape decodes a single reference token.
// Per RFC 6901, ~1 represents / and ~0 represents ~
func Unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// StripHash returns location without its "#fragment".
func StripHash(location string) string {
	if i := strings.IndexByte(location, '#'); i >= 0 {
		return location[:i]
	}
	return location
}

// HashOf returns the "#fragment" part of location, or "#" when there is none.
func HashOf(location string) string {
	if i := strings.IndexByte(location, '#'); i >= 0 {
		return location[i:]
	}
	return "#"
}

// LastToken returns the final token of pointer, or "" for the root pointer.
func LastToken(pointer string) string {
	tokens := Parse(pointer)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
