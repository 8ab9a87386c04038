package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"reportdesk/internal/observability"

	"github.com/gin-gonic/gin"
)

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	HandlerName string `json:"handler_name"`
}

// RouteListingHandler serves an index of every registered route at the root
// path, as HTML for a browser or JSON with ?json=true.
type RouteListingHandler struct {
	serviceName string
	routes      []RouteInfo
}

// NewRouteListingHandler creates a RouteListingHandler.
func NewRouteListingHandler(serviceName string) *RouteListingHandler {
	return &RouteListingHandler{serviceName: serviceName}
}

// CollectRoutes snapshots the routes registered on the engine. Call after all
// routes are set up.
func (h *RouteListingHandler) CollectRoutes(engine *gin.Engine) {
	h.routes = h.routes[:0]
	for _, route := range engine.Routes() {
		h.routes = append(h.routes, RouteInfo{
			Method:      route.Method,
			Path:        route.Path,
			HandlerName: route.Handler,
		})
	}
	sort.Slice(h.routes, func(i, j int) bool {
		if h.routes[i].Path != h.routes[j].Path {
			return h.routes[i].Path < h.routes[j].Path
		}
		return h.routes[i].Method < h.routes[j].Method
	})
}

// GetRouteListingJSON returns the route listing as JSON.
func (h *RouteListingHandler) GetRouteListingJSON(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing_json")
	defer observability.FinishSpan(span, nil)
	c.JSON(http.StatusOK, h.routes)
}

// GetRouteListingPage shows all available routes as a plain HTML table.
func (h *RouteListingHandler) GetRouteListingPage(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing_page")
	defer observability.FinishSpan(span, nil)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	b.WriteString("<title>" + h.serviceName + " routes</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: sans-serif; margin: 2em; color: #222; }\n")
	b.WriteString("table { border-collapse: collapse; }\n")
	b.WriteString("th, td { padding: 4px 12px; text-align: left; border-bottom: 1px solid #ccc; }\n")
	b.WriteString("td.path { font-family: monospace; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(fmt.Sprintf("<h1>%s</h1>\n<p>%d routes. <a href=\"/?json=true\">JSON</a></p>\n", h.serviceName, len(h.routes)))
	b.WriteString("<table>\n<tr><th>Method</th><th>Path</th><th>Handler</th></tr>\n")
	for _, route := range h.routes {
		path := route.Path
		if route.Method == http.MethodGet && !strings.Contains(path, ":") {
			path = fmt.Sprintf("<a href=\"%s\">%s</a>", route.Path, route.Path)
		}
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td class=\"path\">%s</td><td>%s</td></tr>\n",
			route.Method, path, route.HandlerName))
	}
	b.WriteString("</table>\n</body>\n</html>\n")

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}
