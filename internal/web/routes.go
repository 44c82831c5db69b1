package web

import (
	"net/http"

	"github.com/a-h/templ"
	"patientdesk/framework"
	"patientdesk/framework/router"
	"patientdesk/internal/web/appcore"
	"patientdesk/internal/web/views"
)

// View is a page bound to a route pattern. Name identifies it in tooling.
type View struct {
	Name    string
	Handler framework.RouteHandler[*appcore.Context]
}

func (v View) ServeRoute(
	runtime framework.RuntimeContext[*appcore.Context],
	w http.ResponseWriter,
	r *http.Request,
	params router.Params,
) {
	v.Handler.ServeRoute(runtime, w, r, params)
}

type RouteTable = router.Table[framework.RouteHandler[*appcore.Context]]

type route = router.Route[framework.RouteHandler[*appcore.Context]]

// NewRouteTable builds the application route table. Declaration order is
// the order Routes reports.
func NewRouteTable(assets views.Assets) (*RouteTable, error) {
	return router.NewTable(
		route{Pattern: appcore.HomePath, View: View{Name: "Home", Handler: homeHandler(assets)}},
		route{Pattern: appcore.AddPatientPath, View: View{Name: "AddPatient", Handler: addPatientHandler(assets)}},
		route{Pattern: appcore.EditPatientPattern, View: View{Name: "EditPatient", Handler: editPatientHandler(assets)}},
	)
}

// ViewName reports the name of the view bound to a route, or "" for foreign
// handlers.
func ViewName(handler framework.RouteHandler[*appcore.Context]) string {
	view, ok := handler.(View)
	if !ok {
		return ""
	}
	return view.Name
}

func homeHandler(assets views.Assets) framework.RouteHandler[*appcore.Context] {
	return framework.PageRouteHandler[*appcore.Context, framework.EmptyParams, appcore.HomePageView]{
		Page: framework.PageModule[*appcore.Context, framework.EmptyParams, appcore.HomePageView]{
			Pattern:     appcore.HomePath,
			ParseParams: framework.ParseEmptyParams,
			Load:        appcore.LoadHomePage,
			Render:      views.Home,
			Layouts: []framework.LayoutRenderer[appcore.HomePageView]{
				views.Layout[appcore.HomePageView](assets),
			},
			SelectorID: appcore.ContentSelectorID,
		},
	}
}

func addPatientHandler(assets views.Assets) framework.RouteHandler[*appcore.Context] {
	return framework.PageRouteHandler[*appcore.Context, framework.EmptyParams, appcore.PatientFormView]{
		Page: framework.PageModule[*appcore.Context, framework.EmptyParams, appcore.PatientFormView]{
			Pattern:     appcore.AddPatientPath,
			ParseParams: framework.ParseEmptyParams,
			Load:        appcore.LoadAddPatientPage,
			Submit:      appcore.SubmitAddPatient,
			Render:      views.AddPatient,
			Layouts: []framework.LayoutRenderer[appcore.PatientFormView]{
				views.Layout[appcore.PatientFormView](assets),
			},
			SelectorID: appcore.ContentSelectorID,
		},
	}
}

func editPatientHandler(assets views.Assets) framework.RouteHandler[*appcore.Context] {
	return framework.PageRouteHandler[*appcore.Context, framework.IDParams, appcore.PatientFormView]{
		Page: framework.PageModule[*appcore.Context, framework.IDParams, appcore.PatientFormView]{
			Pattern:     appcore.EditPatientPattern,
			ParseParams: framework.ParseIDParams,
			Load:        appcore.LoadEditPatientPage,
			Submit:      appcore.SubmitEditPatient,
			Render:      views.EditPatient,
			Layouts: []framework.LayoutRenderer[appcore.PatientFormView]{
				views.Layout[appcore.PatientFormView](assets),
			},
			SelectorID: appcore.ContentSelectorID,
		},
	}
}

// NotFoundPage renders the 404 page inside the root layout.
func NotFoundPage(assets views.Assets) func(framework.NotFoundContext) templ.Component {
	layout := views.Layout[appcore.NotFoundView](assets)
	return func(notFoundContext framework.NotFoundContext) templ.Component {
		view := appcore.NotFoundView{
			PageTitle:   "Page not found",
			RequestPath: notFoundContext.RequestPath,
		}
		if view.RequestPath == "" {
			view.RequestPath = "/"
		}
		return layout(view, views.NotFound(view))
	}
}
