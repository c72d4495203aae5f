package handler

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openAPISchema []byte

// schemaHandler serves the embedded OpenAPI document.
func schemaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.oai.openapi; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(openAPISchema)
	}
}

const docsPage = `<!DOCTYPE html>
<html>
<head>
  <title>Tu Credito API</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/v1/schema",
      dom_id: "#swagger-ui",
      deepLinking: true,
    });
  </script>
</body>
</html>`

// docsHandler serves a Swagger UI page backed by /v1/schema.
func docsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(docsPage))
	}
}
