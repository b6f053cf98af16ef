// Package utils provides shared utility functions.
//
// These utilities are used across multiple packages and include:
//   - Branch naming and sanitization
//   - Atomic file replacement for st's state files
//   - Interactive terminal detection
package utils
