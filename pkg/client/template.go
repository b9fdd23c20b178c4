package client

import (
	"net/url"
	"sort"
	"strconv"
)

// Query parameter names understood by the placeholder API.
const (
	ParamWidth  = "width"
	ParamHeight = "height"
	ParamFont   = "font"
	ParamFormat = "format"
	ParamText   = "text"
)

// RequestTemplate is the fixed set of query parameters shared by every request
// of a batch. It is immutable: With returns a fresh parameter set and never
// touches the template.
type RequestTemplate struct {
	params map[string]string
}

// ImageOptions are the rendering parameters of a placeholder image.
type ImageOptions struct {
	Width  int
	Height int
	Font   string
	Format string
}

// NewRequestTemplate copies params into a new template.
func NewRequestTemplate(params map[string]string) RequestTemplate {
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return RequestTemplate{params: copied}
}

// NewImageTemplate builds a template from image rendering options.
// Zero-valued options are left out of the query.
func NewImageTemplate(opts ImageOptions) RequestTemplate {
	params := make(map[string]string, 4)
	if opts.Width > 0 {
		params[ParamWidth] = strconv.Itoa(opts.Width)
	}
	if opts.Height > 0 {
		params[ParamHeight] = strconv.Itoa(opts.Height)
	}
	if opts.Font != "" {
		params[ParamFont] = opts.Font
	}
	if opts.Format != "" {
		params[ParamFormat] = opts.Format
	}
	return RequestTemplate{params: params}
}

// With returns the effective parameter set for one request: the template
// with key set to value.
func (t RequestTemplate) With(key, value string) url.Values {
	values := make(url.Values, len(t.params)+1)
	for k, v := range t.params {
		values.Set(k, v)
	}
	values.Set(key, value)
	return values
}

// Get returns the template value for key, or "" when absent.
func (t RequestTemplate) Get(key string) string {
	return t.params[key]
}

// Keys returns the template's parameter names in sorted order.
func (t RequestTemplate) Keys() []string {
	keys := make([]string, 0, len(t.params))
	for k := range t.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of parameters in the template.
func (t RequestTemplate) Len() int {
	return len(t.params)
}
