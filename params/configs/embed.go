package configs

import (
	"embed"
)

// FS provides embedded default experiment YAMLs for external usage.
//
//go:embed *.yaml
var FS embed.FS
