// Package assets embeds the web UI sources and renders the single-page index.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

var (
	//go:embed index.html.tpl
	indexTemplate string

	//go:embed style.css
	styleCSS string

	//go:embed script.js
	scriptJS string

	//go:embed favicon.svg
	faviconSVG string
)

// Media types handled by the minifier.
const (
	MediaHTML = "text/html"
	MediaCSS  = "text/css"
	MediaJS   = "text/javascript"
	MediaSVG  = "image/svg+xml"
)

// PageData is inlined into the index template.
type PageData struct {
	CSS string
	JS  string
	SVG string
}

// NewMinifier returns a minifier for every asset media type.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(MediaCSS, css.Minify)
	m.AddFunc(MediaHTML, html.Minify)
	m.AddFunc(MediaJS, js.Minify)
	m.AddFunc(MediaSVG, svg.Minify)
	return m
}

// Render builds the index page with CSS, JS and the logo inlined, minified.
func Render() ([]byte, error) {
	m := NewMinifier()

	cssMin, err := m.String(MediaCSS, styleCSS)
	if err != nil {
		return nil, fmt.Errorf("minify css: %w", err)
	}
	jsMin, err := m.String(MediaJS, scriptJS)
	if err != nil {
		return nil, fmt.Errorf("minify js: %w", err)
	}
	svgMin, err := m.String(MediaSVG, faviconSVG)
	if err != nil {
		return nil, fmt.Errorf("minify svg: %w", err)
	}

	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, PageData{CSS: cssMin, JS: jsMin, SVG: svgMin}); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	out, err := m.Bytes(MediaHTML, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}

	return out, nil
}

// Favicon returns the minified SVG favicon.
func Favicon() ([]byte, error) {
	return NewMinifier().Bytes(MediaSVG, []byte(faviconSVG))
}
