package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/dgallion1/agendagen/internal/stylesheet"
)

// PageOptions configures the standalone page wrapper.
type PageOptions struct {
	Title string
	Lang  string
	// CSS replaces the embedded print stylesheet when set.
	CSS string
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
{{.CSS}}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page wraps converted markup into a complete HTML document with the print
// stylesheet embedded, the form the print engine consumes.
func Page(markup string, opts PageOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = "Council Agenda"
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	css := opts.CSS
	if css == "" {
		css = stylesheet.Source()
	}
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title, Lang string
		CSS         template.CSS
		Body        template.HTML
	}{
		Title: opts.Title,
		Lang:  opts.Lang,
		CSS:   template.CSS(css),
		Body:  template.HTML(markup),
	})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}
