package framework

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"patientdesk/framework/router"
)

var ErrInvalidParams = errors.New("invalid route params")

type EmptyParams struct{}

type IDParams struct {
	ID string
}

type ParamsParser[P interface{}] func(params router.Params) (P, error)

type PageLoader[C interface{}, P interface{}, VM interface{}] func(
	ctx context.Context,
	appCtx C,
	r *http.Request,
	params P,
) (VM, error)

type PageAction[C interface{}, P interface{}, VM interface{}] func(
	ctx context.Context,
	appCtx C,
	r *http.Request,
	params P,
) (ActionResult[VM], error)

// ActionResult either redirects (303) or re-renders View with Status. A live
// client follows the redirect with the same request headers, so the target
// page answers it with its own patch.
type ActionResult[VM interface{}] struct {
	RedirectTo string
	View       VM
	Status     int
}

type PageRenderer[VM interface{}] func(view VM) templ.Component

type LayoutRenderer[VM interface{}] func(view VM, child templ.Component) templ.Component

type PageModule[C interface{}, P interface{}, VM interface{}] struct {
	Pattern     string
	ParseParams ParamsParser[P]
	Load        PageLoader[C, P, VM]
	Submit      PageAction[C, P, VM]
	Render      PageRenderer[VM]
	Layouts     []LayoutRenderer[VM]

	// SelectorID names the element a partial response replaces. Pages
	// without one answer partial requests with the bare page fragment.
	SelectorID string
}

type RuntimeContext[C interface{}] interface {
	AppContext() C
	IsPartialRequest(r *http.Request) bool
	RenderPage(r *http.Request, w http.ResponseWriter, component templ.Component, statusCode int) error
	PatchLive(w http.ResponseWriter, r *http.Request, selectorID string, component templ.Component) error
	IsNotFound(err error) bool
	RespondNotFound(w http.ResponseWriter, r *http.Request, notFoundContext NotFoundContext)
	RespondBadRequest(w http.ResponseWriter, message string)
	RespondServerError(w http.ResponseWriter, err error)
}

type NotFoundSource string

const (
	NotFoundSourcePageLoad       NotFoundSource = "page_load"
	NotFoundSourceParams         NotFoundSource = "params"
	NotFoundSourceUnmatchedRoute NotFoundSource = "unmatched_route"
)

type NotFoundContext struct {
	RequestPath         string
	MatchedRoutePattern string
	Source              NotFoundSource
}

// RouteHandler is the view bound to a route pattern.
type RouteHandler[C interface{}] interface {
	ServeRoute(runtime RuntimeContext[C], w http.ResponseWriter, r *http.Request, params router.Params)
}

type PageRouteHandler[C interface{}, P interface{}, VM interface{}] struct {
	Page PageModule[C, P, VM]
}

func (h PageRouteHandler[C, P, VM]) ServeRoute(
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	params router.Params,
) {
	servePageModule(runtime, w, r, params, h.Page)
}

func ParseEmptyParams(router.Params) (EmptyParams, error) {
	return EmptyParams{}, nil
}

func ParseIDParams(params router.Params) (IDParams, error) {
	id, ok := params.Get("id")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return IDParams{}, fmt.Errorf("%w: missing id", ErrInvalidParams)
	}
	return IDParams{ID: id}, nil
}

func applyLayouts[VM interface{}](
	layouts []LayoutRenderer[VM],
	view VM,
	child templ.Component,
) templ.Component {
	wrapped := child
	for idx := len(layouts) - 1; idx >= 0; idx-- {
		wrapped = layouts[idx](view, wrapped)
	}
	return wrapped
}

func allowedMethods(hasSubmit bool) []string {
	methods := []string{http.MethodGet, http.MethodHead}
	if hasSubmit {
		methods = append(methods, http.MethodPost)
	}
	return methods
}

func servePageModule[C interface{}, P interface{}, VM interface{}](
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	routeParams router.Params,
	module PageModule[C, P, VM],
) {
	isSubmit := r.Method == http.MethodPost && module.Submit != nil
	if r.Method != http.MethodGet && r.Method != http.MethodHead && !isSubmit {
		w.Header().Set("Allow", strings.Join(allowedMethods(module.Submit != nil), ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	params, err := module.ParseParams(routeParams)
	if err != nil {
		runtime.RespondNotFound(w, r, NotFoundContext{
			RequestPath:         r.URL.Path,
			MatchedRoutePattern: module.Pattern,
			Source:              NotFoundSourceParams,
		})
		return
	}

	if isSubmit {
		serveSubmit(runtime, w, r, params, module)
		return
	}

	view, err := module.Load(r.Context(), runtime.AppContext(), r, params)
	if err != nil {
		handleLoadError(runtime, w, r, err, module.Pattern, NotFoundSourcePageLoad)
		return
	}

	renderView(runtime, w, r, module, view, 0)
}

func serveSubmit[C interface{}, P interface{}, VM interface{}](
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	params P,
	module PageModule[C, P, VM],
) {
	if err := r.ParseForm(); err != nil {
		runtime.RespondBadRequest(w, "malformed form submission")
		return
	}

	result, err := module.Submit(r.Context(), runtime.AppContext(), r, params)
	if err != nil {
		handleLoadError(runtime, w, r, err, module.Pattern, NotFoundSourcePageLoad)
		return
	}

	if result.RedirectTo != "" {
		http.Redirect(w, r, result.RedirectTo, http.StatusSeeOther)
		return
	}

	renderView(runtime, w, r, module, result.View, result.Status)
}

func renderView[C interface{}, P interface{}, VM interface{}](
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	module PageModule[C, P, VM],
	view VM,
	statusCode int,
) {
	component := module.Render(view)
	if runtime.IsPartialRequest(r) && module.SelectorID != "" {
		if err := runtime.PatchLive(w, r, module.SelectorID, component); err != nil {
			runtime.RespondServerError(w, fmt.Errorf("patch route %q: %w", module.Pattern, err))
		}
		return
	}
	if !runtime.IsPartialRequest(r) {
		component = applyLayouts(module.Layouts, view, component)
	}
	if err := runtime.RenderPage(r, w, component, statusCode); err != nil {
		runtime.RespondServerError(w, fmt.Errorf("render route %q: %w", module.Pattern, err))
	}
}

func handleLoadError[C interface{}](
	runtime RuntimeContext[C],
	w http.ResponseWriter,
	r *http.Request,
	err error,
	routePattern string,
	source NotFoundSource,
) {
	if runtime.IsNotFound(err) {
		runtime.RespondNotFound(w, r, NotFoundContext{
			RequestPath:         r.URL.Path,
			MatchedRoutePattern: routePattern,
			Source:              source,
		})
		return
	}

	runtime.RespondServerError(w, fmt.Errorf("load route %q: %w", routePattern, err))
}
