// Package catalog holds the default document type profiles and field
// extraction catalogs.
//
// Catalogs are data: services receive them through their constructors
// and never reach into this package directly, so callers can extend or
// replace a catalog without touching extraction logic. Every accessor
// returns a fresh copy.
package catalog
