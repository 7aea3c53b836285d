// Package web holds the server-rendered HTML templates.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every embedded page together with the shared layout.
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
