// Package config reads and writes the per-repository settings kept in
// .git/st/config.yaml.
package config
