// Package templates renders the HTML pages of the asset repository.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// layout wraps body in the page shell with the shared stylesheet and script.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>`+templ.EscapeString(title)+`</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<script src="/static/app.js" defer></script>
</body>
</html>
`)
		return err
	})
}

// raw writes s unescaped.
func raw(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}
