// Package naming derives the names under which hoisted values are stored in
// a component container.
//
// A proposed name is the target file's base name and the last token of the
// target pointer joined by "_" ([ComponentName]). Names are restricted to
// [A-Za-z0-9_-] after folding diacritics ([Sanitize]), and an [Allocator]
// appends "_2", "_3", ... until the name is free in its container.
package naming
