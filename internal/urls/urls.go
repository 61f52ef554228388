// Package urls maps route names to their paths so handlers and templates can
// redirect and link without hard-coding URLs.
package urls

import (
	"fmt"
	"strings"
)

const (
	Login                = "login"
	Logout               = "logout"
	Signup               = "signup"
	Dashboard            = "waste_collector_dashboard"
	CollectionList       = "collection_list"
	CollectionCreate     = "collection_create"
	CollectionUpdate     = "collection_update"
	CollectionDelete     = "collection_delete"
	AssignedCustomers    = "assigned_customers"
	BillingDashboard     = "billing_dashboard"
	AdminLocalBodies     = "admin_local_bodies"
	AdminAssignCollector = "admin_assign_collector"
	AdminUsers           = "admin_users"
)

var patterns = map[string]string{
	Login:                "/auth/login",
	Logout:               "/auth/logout",
	Signup:               "/auth/signup",
	Dashboard:            "/waste-collector/dashboard",
	CollectionList:       "/waste-collector/collections",
	CollectionCreate:     "/waste-collector/collections/create",
	CollectionUpdate:     "/waste-collector/collections/:id/update",
	CollectionDelete:     "/waste-collector/collections/:id/delete",
	AssignedCustomers:    "/waste-collector/customers",
	BillingDashboard:     "/billing/dashboard",
	AdminLocalBodies:     "/admin/local-bodies",
	AdminAssignCollector: "/admin/customers/:id/assign",
	AdminUsers:           "/admin/users",
}

// Pattern returns the gin route pattern registered under name.
func Pattern(name string) string {
	p, ok := patterns[name]
	if !ok {
		panic(fmt.Sprintf("urls: unknown route %q", name))
	}
	return p
}

// Path fills the pattern's ":param" segments, in order, with args.
func Path(name string, args ...any) string {
	segments := strings.Split(Pattern(name), "/")
	next := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if next >= len(args) {
			panic(fmt.Sprintf("urls: route %q needs more arguments", name))
		}
		segments[i] = fmt.Sprint(args[next])
		next++
	}
	return strings.Join(segments, "/")
}
