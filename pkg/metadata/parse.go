package metadata

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var doiPattern = regexp.MustCompile(`\b10\.\d{4,9}/[-._;()/:A-Za-z0-9]+[A-Za-z0-9]`)

// Tags to skip (non-content)
var skipTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Nav: true,
	atom.Header: true, atom.Footer: true, atom.Aside: true,
	atom.Noscript: true, atom.Iframe: true, atom.Svg: true,
	atom.Form: true, atom.Template: true,
}

var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Blockquote: true, atom.Tr: true,
}

// page collects meta tags keyed by lowercase name/property; repeated keys
// (citation_author) keep every value in document order.
type page struct {
	meta  map[string][]string
	title string
	text  strings.Builder
}

func (p *page) first(keys ...string) string {
	for _, k := range keys {
		for _, v := range p.meta[k] {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func (p *page) all(keys ...string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, k := range keys {
		for _, v := range p.meta[k] {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func parseHTML(body []byte, pageURL *url.URL) (*Metadata, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p := &page{meta: map[string][]string{}}
	p.walk(doc, false)

	md := &Metadata{
		URL:         pageURL.String(),
		Title:       p.first("citation_title", "og:title", "dc.title", "twitter:title"),
		Description: p.first("og:description", "description", "dc.description", "twitter:description"),
		SiteName:    p.first("og:site_name", "citation_journal_title", "application-name"),
		PublishedAt: p.first("citation_publication_date", "citation_date", "article:published_time", "dc.date", "datepublished"),
		Image:       resolve(pageURL, p.first("og:image", "twitter:image", "og:image:url")),
		Text:        truncate(strings.Join(strings.Fields(p.text.String()), " "), MaxTextBytes),
	}
	if md.Title == "" {
		md.Title = strings.Join(strings.Fields(p.title), " ")
	}
	if md.SiteName == "" {
		md.SiteName = pageURL.Host
	}

	md.Authors = p.all("citation_author", "dc.creator", "author")
	for _, a := range p.all("article:author") {
		if !strings.HasPrefix(a, "http") {
			md.Authors = append(md.Authors, a)
		}
	}

	md.Doi = normalizeDOI(p.first("citation_doi", "prism.doi", "dc.identifier"))
	if md.Doi == "" {
		md.Doi = findDOI(pageURL.String())
	}

	md.SourceType = "web"
	ogType := strings.ToLower(p.first("og:type"))
	switch {
	case strings.HasPrefix(ogType, "video"):
		md.SourceType = "video"
	case ogType == "book" || p.first("citation_isbn") != "":
		md.SourceType = "book"
	case ogType == "article" || p.first("citation_journal_title") != "" || md.Doi != "":
		md.SourceType = "article"
	}
	return md, nil
}

func (p *page) walk(n *html.Node, inHead bool) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Meta:
			p.readMeta(n)
			return
		case atom.Title:
			if p.title == "" && n.FirstChild != nil {
				p.title = n.FirstChild.Data
			}
			return
		case atom.Head:
			inHead = true
		}
		if skipTags[n.DataAtom] {
			return
		}
	}

	if n.Type == html.TextNode && !inHead {
		if text := strings.TrimSpace(n.Data); text != "" {
			p.text.WriteString(text)
			p.text.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, inHead)
	}

	if n.Type == html.ElementNode && blockTags[n.DataAtom] {
		p.text.WriteString("\n")
	}
}

func (p *page) readMeta(n *html.Node) {
	var key, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "name", "property", "itemprop":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "content":
			content = a.Val
		}
	}
	if key != "" {
		p.meta[key] = append(p.meta[key], content)
	}
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

func normalizeDOI(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, prefix := range []string{"doi:", "https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/"} {
		if len(raw) >= len(prefix) && strings.EqualFold(raw[:len(prefix)], prefix) {
			raw = raw[len(prefix):]
		}
	}
	if m := doiPattern.FindString(raw); m != "" {
		return m
	}
	return ""
}

func findDOI(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		s = decoded
	}
	return doiPattern.FindString(s)
}

// truncate cuts s to at most max bytes on a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
