// Package api wraps the marketplace REST endpoints consumed by the console.
package api

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Requester is the transport the wrappers speak through.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
	Upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error
}

// Client covers the main marketplace API.
type Client struct {
	r Requester
}

func NewClient(r Requester) *Client {
	return &Client{r: r}
}

type PageParams struct {
	Page     int
	PageSize int
	// extra filters, e.g. status
	Filters map[string]string
}

func (p PageParams) Values() url.Values {
	v := url.Values{}
	page, size := p.Page, p.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("pageSize", strconv.Itoa(size))
	for k, val := range p.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

type PageResult[T any] struct {
	Records  []T `json:"records"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Current  int `json:"current"`
	Size     int `json:"size"`
}

// TotalPages falls back to total/pageSize when the server omits pages.
func (p PageResult[T]) TotalPages() int {
	if p.Pages > 0 {
		return p.Pages
	}
	size := p.PageSize
	if size <= 0 {
		size = p.Size
	}
	if size <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + size - 1) / size
}

// ID decodes identifiers sent either as JSON numbers or as strings (64-bit
// ids are stringified by the backend to survive JavaScript clients).
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}
