// Package evidence answers "how well studied is this supplement?".
//
// The Oracle interface abstracts the literature source; PubMedOracle is the
// production implementation against the NCBI E-utilities API, and
// CachedOracle layers a persistent 30-day count cache over any Oracle so
// repeated discovery attempts for the same term don't hit the network.
package evidence
