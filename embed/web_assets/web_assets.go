package web_assets

import "embed"

//go:embed index.html
var Assets embed.FS
