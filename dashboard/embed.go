// Package dashboard provides the embedded web UI assets for FinBoard.
//
// The page subscribes to /api/sse and renders each widget by kind: mapped
// fields through /api/widgets/{id}/values, quote lists as tables and time
// series as sparklines.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
//	assets/
//	  index.html    - dashboard page with inline CSS and JavaScript
//
// The page title is the {{.Title}} placeholder, substituted when served.
//
//go:embed assets/*
var Assets embed.FS
