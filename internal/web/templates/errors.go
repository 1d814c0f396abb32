package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders an error box with its suggested action and support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		html := `<div class="alert alert-error" role="alert">
<p class="alert-message">` + templ.EscapeString(message) + `</p>
`
		if action != "" {
			html += `<p class="alert-action">` + templ.EscapeString(action) + `</p>
`
		}
		if code != "" {
			html += `<p class="alert-code">Reference: ` + templ.EscapeString(code) + `</p>
`
		}
		html += `</div>
`
		_, err := io.WriteString(w, html)
		return err
	})
}

// ErrorPage renders a full page around ErrorAlert.
func ErrorPage(message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main class="container">
`); err != nil {
			return err
		}
		if err := ErrorAlert(message, action, code).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<p><a href="/">Back to search</a></p>
</main>
`)
		return err
	})
	return layout("Error", body)
}
