package engine

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"patientdesk/framework"
	"patientdesk/framework/router"
)

type Config[C interface{}] struct {
	AppContext C
	Routes     *router.Table[framework.RouteHandler[C]]

	RenderPage       func(r *http.Request, w http.ResponseWriter, component templ.Component, statusCode int) error
	PatchLive        func(w http.ResponseWriter, r *http.Request, selectorID string, component templ.Component) error
	IsPartialRequest func(r *http.Request) bool

	IsNotFoundError   func(err error) bool
	HandleNotFound    func(w http.ResponseWriter, r *http.Request, notFoundContext framework.NotFoundContext)
	HandleBadRequest  func(w http.ResponseWriter, message string)
	HandleServerError func(w http.ResponseWriter, err error)
}

type Engine[C interface{}] struct {
	appContext C
	routes     *router.Table[framework.RouteHandler[C]]

	renderPage func(r *http.Request, w http.ResponseWriter, component templ.Component, statusCode int) error
	patchLive  func(w http.ResponseWriter, r *http.Request, selectorID string, component templ.Component) error
	isPartial  func(r *http.Request) bool

	isNotFound  func(err error) bool
	notFound    func(w http.ResponseWriter, r *http.Request, notFoundContext framework.NotFoundContext)
	badRequest  func(w http.ResponseWriter, message string)
	serverError func(w http.ResponseWriter, err error)
}

func New[C interface{}](cfg Config[C]) (*Engine[C], error) {
	if cfg.Routes == nil {
		return nil, errors.New("route table is required")
	}
	if cfg.RenderPage == nil {
		return nil, errors.New("render page callback is required")
	}

	isPartial := cfg.IsPartialRequest
	if isPartial == nil {
		isPartial = IsDatastarRequest
	}

	isNotFound := cfg.IsNotFoundError
	if isNotFound == nil {
		isNotFound = func(error) bool { return false }
	}

	notFound := cfg.HandleNotFound
	if notFound == nil {
		notFound = func(w http.ResponseWriter, r *http.Request, _ framework.NotFoundContext) {
			http.NotFound(w, r)
		}
	}

	badRequest := cfg.HandleBadRequest
	if badRequest == nil {
		badRequest = func(w http.ResponseWriter, message string) {
			http.Error(w, message, http.StatusBadRequest)
		}
	}

	serverError := cfg.HandleServerError
	if serverError == nil {
		serverError = func(w http.ResponseWriter, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return &Engine[C]{
		appContext:  cfg.AppContext,
		routes:      cfg.Routes,
		renderPage:  cfg.RenderPage,
		patchLive:   cfg.PatchLive,
		isPartial:   isPartial,
		isNotFound:  isNotFound,
		notFound:    notFound,
		badRequest:  badRequest,
		serverError: serverError,
	}, nil
}

// DatastarRequestHeader is sent by the datastar client on every action.
const DatastarRequestHeader = "Datastar-Request"

// IsDatastarRequest reports whether r asks for an element patch instead of a
// full page.
func IsDatastarRequest(r *http.Request) bool {
	return r != nil && strings.EqualFold(strings.TrimSpace(r.Header.Get(DatastarRequestHeader)), "true")
}

// ServeRoute dispatches r to the view bound to the matching pattern. It
// returns false when no pattern matches and leaves w untouched.
func (engine *Engine[C]) ServeRoute(w http.ResponseWriter, r *http.Request) bool {
	match, ok := engine.routes.Match(r.URL.EscapedPath())
	if !ok {
		return false
	}

	match.View.ServeRoute(engine, w, r, match.Params)
	return true
}

// MatchPattern returns the pattern that would serve r, for labelling.
func (engine *Engine[C]) MatchPattern(r *http.Request) (string, bool) {
	match, ok := engine.routes.Match(r.URL.EscapedPath())
	if !ok {
		return "", false
	}
	return match.Pattern, true
}

func (engine *Engine[C]) AppContext() C {
	return engine.appContext
}

func (engine *Engine[C]) IsPartialRequest(r *http.Request) bool {
	return engine.isPartial(r)
}

func (engine *Engine[C]) RenderPage(
	r *http.Request,
	w http.ResponseWriter,
	component templ.Component,
	statusCode int,
) error {
	return engine.renderPage(r, w, component, statusCode)
}

// PatchLive falls back to a plain render when no patch callback is set.
func (engine *Engine[C]) PatchLive(
	w http.ResponseWriter,
	r *http.Request,
	selectorID string,
	component templ.Component,
) error {
	if engine.patchLive == nil {
		return engine.renderPage(r, w, component, 0)
	}
	return engine.patchLive(w, r, selectorID, component)
}

func (engine *Engine[C]) IsNotFound(err error) bool {
	return engine.isNotFound(err)
}

func (engine *Engine[C]) RespondNotFound(
	w http.ResponseWriter,
	r *http.Request,
	notFoundContext framework.NotFoundContext,
) {
	engine.notFound(w, r, notFoundContext)
}

func (engine *Engine[C]) RespondBadRequest(w http.ResponseWriter, message string) {
	engine.badRequest(w, message)
}

func (engine *Engine[C]) RespondServerError(w http.ResponseWriter, err error) {
	engine.serverError(w, err)
}
