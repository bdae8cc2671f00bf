package permissions

import "sort"

// Registry maps route names to required permission keys and lists the
// navigation entries of the admin app. It is built once at startup and
// never mutated afterwards; the evaluator only reads from it.
type Registry struct {
	routes map[string][]string
	nav    []NavigationItem
}

// NewRegistry builds a registry from a route map and navigation list.
// The inputs are copied; callers cannot mutate the registry afterwards.
func NewRegistry(routes map[string][]string, nav []NavigationItem) *Registry {
	r := &Registry{
		routes: make(map[string][]string, len(routes)),
		nav:    make([]NavigationItem, len(nav)),
	}
	for name, keys := range routes {
		r.routes[name] = append([]string(nil), keys...)
	}
	copy(r.nav, nav)
	return r
}

// RouteKeys returns the permission keys required for a route, and
// whether the route is registered at all. Routes absent from the
// registry require nothing.
func (r *Registry) RouteKeys(routeName string) ([]string, bool) {
	keys, ok := r.routes[routeName]
	return keys, ok
}

// RouteNames returns the registered route names in sorted order.
func (r *Registry) RouteNames() []string {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NavigationItems returns the full navigation list in declaration order.
func (r *Registry) NavigationItems() []NavigationItem {
	return r.nav
}

// DefaultRegistry is the compiled-in registry for the Sofra admin app.
// This is the single source of truth for which capability gates which
// route and navigation entry.
func DefaultRegistry() *Registry {
	return NewRegistry(
		map[string][]string{
			"dashboard":     {},
			"kitchen":       {"admin.kitchen.view", "admin.kitchen.edit"},
			"kitchen-edit":  {"admin.kitchen.edit"},
			"menu":          {"admin.menu.view", "admin.menu.edit"},
			"menu-edit":     {"admin.menu.edit"},
			"orders":        {"admin.orders.view"},
			"orders-manage": {"admin.orders.manage"},
			"staff":         {"admin.staff.view", "admin.staff.manage"},
			"reports":       {"admin.reports.view"},
			"settings":      {"admin.settings.manage"},
		},
		[]NavigationItem{
			{Name: "Dashboard", Route: "dashboard", Icon: "home"},
			{Name: "Kitchen", Route: "kitchen", Icon: "kitchen", RequiredKeys: []string{"admin.kitchen.view", "admin.kitchen.edit"}},
			{Name: "Menu", Route: "menu", Icon: "menu-book", RequiredKeys: []string{"admin.menu.view", "admin.menu.edit"}},
			{Name: "Orders", Route: "orders", Icon: "receipt", RequiredKeys: []string{"admin.orders.view", "admin.orders.manage"}},
			{Name: "Staff", Route: "staff", Icon: "people", RequiredKeys: []string{"admin.staff.view", "admin.staff.manage"}},
			{Name: "Reports", Route: "reports", Icon: "bar-chart", RequiredKeys: []string{"admin.reports.view"}},
			{Name: "Settings", Route: "settings", Icon: "settings", RequiredKeys: []string{"admin.settings.manage"}},
		},
	)
}
