// Package samples provides the embedded sample catalogue and utilities for loading it.
package samples

import "embed"

// dataFS embeds all JSON files from this directory at build time.
//
//go:embed *.json
var dataFS embed.FS
