// Package deployerregistry contains the Inflectiv deployer authorization
// registry: the access-control gate consulted before any access-rights ledger
// may be provisioned.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package deployerregistry
