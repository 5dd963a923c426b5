// Package ssr expands the custom elements used in the page templates into plain HTML.
package ssr

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/evidenx/evidenx/internal/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ClassFunc returns the CSS class for the value of a badge.
type ClassFunc func(value string) string

// Expander rewrites custom elements.
//
// A component like <button-primary> or <a as="button-primary"> gets the static classes of the component. A badge
// like <status-badge value="Open">Open</status-badge> becomes a span with the class the badge computes from its
// value.
type Expander struct {
	Components map[string]string
	Badges     map[string]ClassFunc
}

// Expand rewrites a complete HTML document.
func (e Expander) Expand(w io.Writer, r io.Reader) error {
	doc, err := e.expand(r)
	if err != nil {
		return err
	}
	for _, n := range doc.Nodes {
		if err = html.Render(w, n); err != nil {
			return errors.Wrap(err, "render html")
		}
	}
	return nil
}

// ExpandFragment rewrites a partial response such as an htmx swap target.
func (e Expander) ExpandFragment(w io.Writer, r io.Reader) error {
	doc, err := e.expand(r)
	if err != nil {
		return err
	}
	// The parser wraps fragments in html and body elements, render only what was inside.
	body := doc.Find("body")
	if len(body.Nodes) > 0 {
		for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
			if err = html.Render(w, c); err != nil {
				return errors.Wrap(err, "render html")
			}
		}
	}
	return nil
}

func (e Expander) expand(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}

	for component, class := range e.Components {
		doc.Find(component).Each(func(_ int, s *goquery.Selection) {
			s.AddClass(class)
		})
		doc.Find(`[as="` + component + `"]`).Each(func(_ int, s *goquery.Selection) {
			s.RemoveAttr("as")
			s.AddClass(class)
		})
	}

	for badge, classFunc := range e.Badges {
		doc.Find(badge).Each(func(_ int, s *goquery.Selection) {
			value, _ := s.Attr("value")
			if value == "" {
				value = strings.TrimSpace(s.Text())
			}
			s.RemoveAttr("value")
			s.SetAttr("data-value", value)
			s.AddClass("badge " + classFunc(value))
			node := s.Nodes[0]
			node.Data = "span"
			node.DataAtom = atom.Span
		})
	}
	return doc, nil
}
