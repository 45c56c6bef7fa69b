package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/form"
	"github.com/orgball2608/fb-post-manager/pkg/formatter"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = []string{"home.html", "settings.html", "manage.html", "posts.html", "form.html", "error.html"}

type templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date":       formatter.FormatDate,
	"number":     formatter.FormatNumber,
	"createPath": CreatePath,
	"listPath":   ListingPath,
}

func parseTemplates() (*templates, error) {
	t := &templates{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		t.pages[name] = tpl
	}
	return t, nil
}

// view is the data every page template receives.
type view struct {
	Title   string
	Session *domain.Session
	Kinds   []domain.PostKind

	Accounts  []domain.Page
	Page      domain.Page
	List      *domain.PostList
	Published bool
	Form      *formView

	Status  int
	Message string
}

type fieldView struct {
	form.Field
	Value  string
	Errors []string
}

type formView struct {
	Kind   domain.PostKind
	Action string
	Fields []fieldView
}

func newFormView(schema form.Schema, values map[string][]string, errs form.Errors) *formView {
	fv := &formView{Kind: schema.Kind, Action: CreatePath(schema.Kind)}
	for _, f := range schema.Fields {
		field := fieldView{Field: f, Errors: errs[f.Name]}
		if v := values[f.Name]; len(v) > 0 {
			field.Value = v[0]
		}
		fv.Fields = append(fv.Fields, field)
	}
	return fv
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data view) {
	tpl, ok := s.templates.pages[name]
	if !ok {
		s.logger.Error("Unknown template", "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	data.Kinds = domain.PostKinds

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}
