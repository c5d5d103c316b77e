package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/desertthunder/rolodex/internal/app"
	"github.com/desertthunder/rolodex/internal/models"
	"github.com/desertthunder/rolodex/internal/notify"
)

//go:embed templates/*.html
var templateFS embed.FS

type layout struct {
	Title  string
	Lang   string
	Toasts []notify.Toast
}

type contactsPage struct {
	layout
	State  app.State
	Fields []app.Field
}

type authPage struct {
	layout
	Mode  string
	OAuth bool
}

// pages holds one template set per page, each sharing the layout.
type pages struct {
	byName map[string]*template.Template
}

var funcs = template.FuncMap{
	"value":   models.Value,
	"present": models.Present,
	"matches": func(c models.Contact, q string) bool {
		return q == "" || app.Matches(c, q, strings.ToLower(q))
	},
	"toast": func(k notify.Kind) string {
		return "toast-" + k.String()
	},
	"multiline": func(f app.Field) bool { return f == app.FieldNotes },
	"required":  func(f app.Field) bool { return f == app.FieldName },
	"inputType": func(f app.Field) string {
		switch f {
		case app.FieldEmail:
			return "email"
		case app.FieldPhone:
			return "tel"
		default:
			return "text"
		}
	},
}

func mustParsePages() *pages {
	p := &pages{byName: map[string]*template.Template{}}
	for _, name := range []string{"contacts", "auth"} {
		t := template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
		p.byName[name] = t
	}
	return p
}

// render executes page into a buffer first so template errors become a 500
// instead of a half-written page.
func (h *Handler) render(w http.ResponseWriter, _ *http.Request, name string, data any) {
	t, ok := h.pages.byName[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
