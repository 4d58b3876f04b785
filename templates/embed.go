// Package templates embeds the HTML pages served by the web surface.
package templates

import "embed"

//go:embed *.html
var TemplateFS embed.FS
