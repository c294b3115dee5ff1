// Package dashboard provides the embedded web UI for gardenwatch.
//
// The page subscribes to the server's SSE stream and mirrors each element
// into the DOM: text into the matching target, style onto the page, and a
// button for any pending control. Pressing the button posts to the control
// activation endpoint.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Dashboard page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
