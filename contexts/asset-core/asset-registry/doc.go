// Package assetregistry contains the Inflectiv asset registry: it maps
// creator-supplied external identifiers to immutable numeric handles, owns
// asset ownership and royalty configuration, and provisions one access-rights
// ledger per asset through the deployer-gated factory.
package assetregistry
