// Package web holds the embedded frontend assets.
package web

import "embed"

//go:embed static
var Files embed.FS
