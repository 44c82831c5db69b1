// Package views holds the page components. Pages are html/template files
// exposed as templ components so the framework can layer and stream them.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"patientdesk/internal/web/appcore"
)

const CodeStylesheetPath = "/static/code.css"
const DefaultDatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(
	template.New("pages").Funcs(template.FuncMap{"field": newField}).ParseFS(templateFS, "templates/*.html"),
)

type fieldView struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Error    string
	Required bool
}

func newField(name, label, inputType, value, errMessage string, required bool) fieldView {
	return fieldView{
		Name:     name,
		Label:    label,
		Type:     inputType,
		Value:    value,
		Error:    errMessage,
		Required: required,
	}
}

// Assets are the external files the document shell links. Both must be
// allowed by the content security policy the server sends.
type Assets struct {
	CodeStylesheet string
	DatastarScript string
}

func DefaultAssets() Assets {
	return Assets{
		CodeStylesheet: CodeStylesheetPath,
		DatastarScript: DefaultDatastarScript,
	}
}

type layoutData struct {
	Title  string
	Nav    []appcore.NavItem
	Assets Assets
	Body   template.HTML
}

// Layout returns a layout renderer that wraps a page in the document shell.
func Layout[VM appcore.LayoutView](assets Assets) func(view VM, child templ.Component) templ.Component {
	return func(view VM, child templ.Component) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			body, err := templ.ToGoHTML(ctx, child)
			if err != nil {
				return err
			}

			return pages.ExecuteTemplate(w, "layout", layoutData{
				Title:  view.LayoutPageTitle(),
				Nav:    appcore.NavItems(view.LayoutActivePath()),
				Assets: assets,
				Body:   body,
			})
		})
	}
}

func Home(view appcore.HomePageView) templ.Component {
	return templ.FromGoHTML(pages.Lookup("home"), view)
}

func AddPatient(view appcore.PatientFormView) templ.Component {
	return patientForm(view)
}

func EditPatient(view appcore.PatientFormView) templ.Component {
	return patientForm(view)
}

func patientForm(view appcore.PatientFormView) templ.Component {
	return templ.FromGoHTML(pages.Lookup("patient_form"), view)
}

func NotFound(view appcore.NotFoundView) templ.Component {
	return templ.FromGoHTML(pages.Lookup("not_found"), view)
}
