// Package expander derives every page's image URL from a first-page sample.
package expander

import (
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"slidebot/slidebot/utils/types"
)

// DefaultSize is the resolution token of full-size slide images.
const DefaultSize = 2048

// slide images end in "<stem>-<index>-<size>.jpg"
var segmentPattern = regexp.MustCompile(`^(.+)-(\d+)-(\d+)\.jpg$`)

// Template is a slide image URL with a single index slot in the final path
// segment. Host, earlier path segments and the query are never rewritten.
type Template struct {
	base *url.URL
	dir  string
	stem string
	size int
}

func splitSegment(raw string) (*url.URL, string, string, int, int, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, "", "", 0, 0, false
	}
	dir, file := path.Split(u.Path)
	m := segmentPattern.FindStringSubmatch(file)
	if m == nil {
		return nil, "", "", 0, 0, false
	}
	index, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, "", "", 0, 0, false
	}
	size, err := strconv.Atoi(m[3])
	if err != nil {
		return nil, "", "", 0, 0, false
	}
	return u, dir, m[1], index, size, true
}

// ParseTemplate accepts raw only if it is the first page at the given size.
func ParseTemplate(raw string, size int) (Template, bool) {
	u, dir, stem, index, gotSize, ok := splitSegment(raw)
	if !ok || index != 1 || gotSize != size {
		return Template{}, false
	}
	return Template{base: u, dir: dir, stem: stem, size: size}, true
}

// URL renders the page URL for index.
func (t Template) URL(index int) string {
	u := *t.base
	u.Path = t.dir + t.stem + "-" + strconv.Itoa(index) + "-" + strconv.Itoa(t.size) + ".jpg"
	u.RawPath = ""
	return u.String()
}

// ParseIndex reads the page index back out of an expanded URL.
func ParseIndex(raw string, size int) (int, bool) {
	_, _, _, index, gotSize, ok := splitSegment(raw)
	if !ok || gotSize != size {
		return 0, false
	}
	return index, true
}

// Expand turns candidates into one URL per page 1..totalPages for every
// first-page template. The same URL is never produced twice.
func Expand(candidates []string, totalPages, size int) []types.PageURL {
	if totalPages <= 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var out []types.PageURL
	for _, c := range candidates {
		tpl, ok := ParseTemplate(strings.TrimSpace(c), size)
		if !ok {
			continue
		}
		for i := 1; i <= totalPages; i++ {
			u := tpl.URL(i)
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, types.PageURL{Index: i, URL: u})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Index != out[b].Index {
			return out[a].Index < out[b].Index
		}
		return out[a].URL < out[b].URL
	})
	return out
}
