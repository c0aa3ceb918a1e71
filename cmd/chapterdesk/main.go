// Package main is the entry point for the chapterdesk CLI and API server.
package main

import "github.com/blackwell-systems/chapterdesk/internal/app"

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/chapterdesk
var version = "dev"

func main() {
	app.SetVersion(version)
	app.Execute()
}
