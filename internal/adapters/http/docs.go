package http

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultSpecPath = "api/openapi.yaml"
	specURL         = "/docs/openapi.yaml"
)

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: '{{.SpecURL}}', dom_id: '#swagger-ui', deepLinking: true });
  </script>
</body>
</html>`))

type docsPageData struct {
	Title   string
	SpecURL string
}

// SetupDocs serves Swagger UI at /docs and the OpenAPI document found at
// specPath (api/openapi.yaml when empty). The document is read per request so
// edits show up without a restart.
func SetupDocs(app *fiber.App, specPath string) {
	if specPath == "" {
		specPath = defaultSpecPath
	}

	var page bytes.Buffer
	if err := docsPage.Execute(&page, docsPageData{Title: "Tripmap API " + Version, SpecURL: specURL}); err != nil {
		slog.Error("render docs page", "error", err)
	}
	html := page.Bytes()

	docs := app.Group("/docs")
	docs.Get("/", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(html)
	})
	docs.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		data, err := os.ReadFile(specPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return errNotFound(c, "openapi document not found")
		case err != nil:
			LoggerFromCtx(c.UserContext()).Error("read openapi document", "path", specPath, "error", err)
			return errInternal(c, "internal server error")
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(data)
	})
}
