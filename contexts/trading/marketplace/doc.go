// Package marketplace implements listing and purchase flows for access
// units over registered data assets. A purchase atomically settles a
// three-way payment split (platform fee, creator royalty, seller proceeds)
// and moves access-rights balance from seller to buyer; any failure along
// the way is compensated so no partial effect survives.
package marketplace
