// Package earningsservice is the read-side of the marketplace: it consumes
// purchase-completed events, keeps a per-identity transaction history, and
// serves earnings summaries with human-readable currency amounts.
package earningsservice
