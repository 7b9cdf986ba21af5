package v1

import (
	"embed"
	"net/http"
)

//go:embed index.html
var ui embed.FS

// ConstructUIRouter serves the embedded settings page.
func ConstructUIRouter() http.Handler {
	return http.FileServer(http.FS(ui))
}
