package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts routes that require an authenticated team member
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// PublicRouteRegistrar mounts routes that are reachable without a token
type PublicRouteRegistrar interface {
	RegisterPublic(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	protection []gin.HandlerFunc
	public     []PublicRouteRegistrar
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithProtection sets the middleware chain that guards registered routes,
// typically authentication followed by team resolution
func WithProtection(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.protection = append(r.protection, handlers...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds protected route registrars
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// RegisterPublic adds unauthenticated route registrars
func (r *Router) RegisterPublic(registrars ...PublicRouteRegistrar) *Router {
	r.public = append(r.public, registrars...)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.public {
		registrar.RegisterPublic(api)
	}

	protected := api.Group("")
	protected.Use(r.protection...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(protected)
	}
}
