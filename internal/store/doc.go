// Package store persists the last connected device.
//
// The store is a single slot: Save overwrites it, Load reads it back and
// Clear empties it. FileStore keeps the slot in last_device.yaml inside the
// tvremote config directory; MemoryStore is used in tests and when no
// config directory is available.
package store
