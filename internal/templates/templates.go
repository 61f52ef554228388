// Package templates holds the embedded HTML views.
package templates

import (
	"embed"
	"html/template"

	"waste_tracker/internal/urls"
)

//go:embed html/*.html
var files embed.FS

// FuncMap is available to every view.
var FuncMap = template.FuncMap{
	"url": urls.Path,
}

// Parse returns every view keyed by its file name.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(FuncMap).ParseFS(files, "html/*.html")
}
