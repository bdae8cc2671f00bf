package permissions

// Grant is one authorisable capability held by a user, as returned by
// the upstream permission endpoint. Key is the only field the evaluator
// needs; the metadata travels along for UI surfaces that render grants.
type Grant struct {
	Key   string `json:"key"`
	Name  string `json:"name,omitempty"`
	Group string `json:"group,omitempty"`
}

// Keys projects a grant list to its permission keys, preserving order.
func Keys(grants []Grant) []string {
	keys := make([]string, len(grants))
	for i, g := range grants {
		keys[i] = g.Key
	}
	return keys
}

// NavigationItem is one entry in the admin app's navigation tree.
// An item is visible when the user holds at least one of RequiredKeys,
// or when RequiredKeys is empty.
type NavigationItem struct {
	Name         string
	Route        string
	Icon         string
	RequiredKeys []string
}
