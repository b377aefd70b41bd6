// Package views embeds the dashboard page templates.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed layouts/*.django dashboard/*.django *.django
var files embed.FS

// Layout is the wrapper every page renders into.
const Layout = "layouts/main"

// NewEngine builds the template engine over the embedded files.
func NewEngine() *django.Engine {
	return django.NewFileSystem(http.FS(files), ".django")
}
