package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Page is one slice of a list. Page numbers start at zero.
type Page struct {
	Items   any `json:"items"`
	Found   int `json:"found"`
	Pages   int `json:"pages"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

func paginate[T any](c *gin.Context, items []T) Page {
	perPage := queryInt(c, "per_page", defaultPerPage)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := queryInt(c, "page", 0)
	if page < 0 {
		page = 0
	}

	pages := (len(items) + perPage - 1) / perPage
	start := min(page*perPage, len(items))
	end := min(start+perPage, len(items))

	slice := items[start:end]
	if slice == nil {
		slice = []T{}
	}

	return Page{
		Items:   slice,
		Found:   len(items),
		Pages:   pages,
		Page:    page,
		PerPage: perPage,
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
