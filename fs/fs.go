// Package appfs exposes files embedded in the app binary.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
