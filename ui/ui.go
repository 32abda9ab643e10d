// Package ui carries the embedded templates and static assets for the
// dashboard.
package ui

import "embed"

//go:embed templates static
var Files embed.FS
