// Package resolver loads the documents a bundle operation needs and resolves
// JSON References against them.
//
// A [Registry] holds one [Entry] per normalized absolute location. Entries
// are claimed with [Registry.Add] before their document is fetched, so
// concurrent discoveries of the same location produce a single fetch.
// [Registry.Resolve] walks a JSON Pointer through a registered document,
// chasing references it meets and flagging cycles.
//
// [ExternalResolver] populates a registry from its root document, fetching
// every externally referenced document concurrently through a [Fetcher] and
// decoding it with a [Parser].
//
// # Security
//
// [DefaultFetcher] refuses HTTP locations unless an [HTTPFetcher] is
// configured, and [FileFetcher] can confine reads to a base directory.
// Fetched documents are limited to [MaxFileSize] bytes and a registry to
// [MaxCachedDocuments] documents.
package resolver
