package ginserver

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

const docPath = "/swagger/doc.json"

//go:embed swagger
var swaggerFiles embed.FS

// staticAsset is an embedded file served with a content hash as its ETag.
type staticAsset struct {
	body        []byte
	contentType string
	etag        string
}

func newStaticAsset(body []byte, contentType string) staticAsset {
	sum := sha256.Sum256(body)
	return staticAsset{body: body, contentType: contentType, etag: `"` + hex.EncodeToString(sum[:8]) + `"`}
}

func (a staticAsset) serve(c *gin.Context) {
	c.Header("ETag", a.etag)
	c.Header("Cache-Control", "no-cache")
	if c.GetHeader("If-None-Match") == a.etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, a.contentType, a.body)
}

// loadSwaggerAssets reads the OpenAPI document and renders the UI page
// pointing at it.
func loadSwaggerAssets() (doc, page staticAsset, err error) {
	raw, err := swaggerFiles.ReadFile("swagger/openapi.json")
	if err != nil {
		return doc, page, err
	}
	tmpl, err := swaggerFiles.ReadFile("swagger/index.html")
	if err != nil {
		return doc, page, err
	}
	html := strings.ReplaceAll(string(tmpl), "{{DOC_URL}}", docPath)
	return newStaticAsset(raw, "application/json"), newStaticAsset([]byte(html), "text/html; charset=utf-8"), nil
}

func registerSwaggerRoutes(router gin.IRoutes) {
	doc, page, err := loadSwaggerAssets()
	if err != nil {
		// embedded at build time, never missing at run time
		panic("ginserver: swagger assets: " + err.Error())
	}
	router.GET(docPath, doc.serve)
	router.GET("/swagger", page.serve)
	router.GET("/swagger/index.html", page.serve)
}
