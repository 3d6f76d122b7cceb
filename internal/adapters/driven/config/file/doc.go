// Package file provides the TOML-backed configuration store.
//
// The file is read once into a flat map of dot-separated keys
// ("embedding.provider") and written back as nested tables, so a
// hand-edited config.toml and one written by `recall settings set` look
// the same.
package file
