// Package cache defines the key-value contract stores persist through and
// ships the backends used by the library and the statectl tool.
//
// A Backend only needs Has, Get and Set. Values are JSON text and keys are
// opaque strings built by the store ("store_state_<type>:<instance>").
// Deleter and Lister are optional capabilities used by tooling.
//
// Backends are safe for concurrent use. Nothing here retries; wrap a backend
// with WithTimeout to bound slow calls and Traced to emit spans.
package cache
