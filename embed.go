package gallery

import "embed"

// EmbeddedAssets contains the static assets served under /public/:
// gallery.js (keyboard shortcuts, viewport hand-off, live reload) and
// gallery.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
