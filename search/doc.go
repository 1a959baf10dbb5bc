// Package search resolves free-text supplement queries against the vector
// index.
//
// The Engine type implements a multi-term resolution algorithm:
//   - The query is expanded into candidate terms by a language model
//   - Each term is embedded and searched by cosine similarity
//   - The best match across terms wins; a near-perfect match stops the
//     loop early
//
// Matches below the similarity threshold are reported as misses so callers
// can fall back to discovery.
package search
