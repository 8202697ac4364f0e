// Package commands defines the statectl CLI for inspecting persisted store
// snapshots.
//
// Commands
//
//   - key     Print the cache key for a store name and instance key
//   - get     Print a stored snapshot, or its field layout with --fields
//   - put     Validate and write a JSON object snapshot
//   - delete  Remove a stored snapshot
//   - keys    List stored cache keys
//
// # Configuration
//
// The root command loads STATESTORE_* variables (and .env) through
// internal/config, then opens the configured backend wrapped with a per-call
// timeout and cache spans before any subcommand that reads or writes
// snapshots. key needs no configuration.
package commands
