package api

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cascadehq/cascade/internal/apperr"
	"github.com/cascadehq/cascade/internal/paging"
)

// respondError maps the error taxonomy to HTTP statuses. Internal errors
// are logged with detail and surfaced with a generic message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	if kind == apperr.KindInternal {
		log.Printf("api: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "internal error"
	}
	c.JSON(kind.HTTPStatus(), gin.H{
		"error": msg,
		"kind":  kind.String(),
	})
}

// pageFromQuery parses page/limit query parameters.
func pageFromQuery(c *gin.Context) paging.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return paging.Page{Page: page, Limit: limit}.Normalize()
}

// bindOptional binds a JSON body when one is present. Endpoints with
// optional fields accept an empty body.
func bindOptional(c *gin.Context, out interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(out)
}

// uintParam parses a numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, apperr.Validationf("invalid %s: %q", name, c.Param(name)))
		return 0, false
	}
	return uint(v), true
}

// uintQuery parses an optional numeric query parameter, 0 when absent.
func uintQuery(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
