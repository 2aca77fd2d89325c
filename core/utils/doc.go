// Package utils provides loose value conversion for configuration supplied as untyped
// option maps (see storage.ConfigFromMap), where values may arrive as strings, numbers,
// booleans or raw bytes.
package utils
