package apiclient

import (
	"strings"
)

var imageKeys = map[string]bool{
	"url":       true,
	"img":       true,
	"avatarUrl": true,
	"banner":    true,
	"goodsImg":  true,
}

// comma separated image lists
var imageListKeys = map[string]bool{
	"imgList":      true,
	"detailImages": true,
}

func formatImageURL(base, u string) string {
	if u == "" || base == "" {
		return u
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "data:") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return strings.TrimRight(base, "/") + u
}

// rewriteImages walks a decoded JSON value and turns relative image paths absolute.
func rewriteImages(base string, v any) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			rewriteImages(base, item)
		}
	case map[string]any:
		for k, val := range t {
			s, isStr := val.(string)
			switch {
			case isStr && imageKeys[k]:
				t[k] = formatImageURL(base, s)
			case isStr && imageListKeys[k]:
				parts := strings.Split(s, ",")
				out := make([]string, 0, len(parts))
				for _, p := range parts {
					if p = strings.TrimSpace(p); p != "" {
						out = append(out, formatImageURL(base, p))
					}
				}
				t[k] = strings.Join(out, ",")
			default:
				rewriteImages(base, val)
			}
		}
	}
}
