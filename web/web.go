// Package web serves the browser pages. Pages talk to the proxy endpoints
// through apiclient, the same way any other consumer would.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"frontend/apiclient"

	"github.com/gofiber/template/html/v2"
)

//go:embed views
var viewsFS embed.FS

// Layout wraps every page.
const Layout = "layouts/main"

// NewEngine loads the embedded page templates
func NewEngine() (*html.Engine, error) {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("open views: %w", err)
	}

	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("pretty", pretty)
	return engine, nil
}

func pretty(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}

// errorText is the message shown in a page's error card.
func errorText(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
