// Package statestore provides typed, cache-backed state stores.
//
// A Definition declares a store's attributes, the casts or enum mappings
// that convert each attribute between its raw JSON form and a typed value,
// and the default state. New resolves the definition once and returns a
// Store whose state lives in a cache.Backend under a deterministic key:
//
//	store_state_<Name>:<instance key or 0>
//
// Rehydrate loads the entry, seeding and persisting the default when none
// exists. Persist writes the current state back. Both accept hooks that can
// take over the cache I/O, and Persist can be gated by guard rules written
// for expr, CEL or (with the js_eval build tag) JavaScript.
//
// Stores are not safe for concurrent use. Factory hands out explicitly
// keyed instances and serializes read-modify-write cycles per key.
package statestore
