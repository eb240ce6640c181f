package auth

// Capability is a single UI permission derived from the session's roles.
// The route guard and the navigation handler both consume the resolved set so
// role checks live in exactly one place.
type Capability string

const (
	CapManageUsers        Capability = "manage-users"
	CapManageClients      Capability = "manage-clients"
	CapManageProducts     Capability = "manage-products"
	CapManageDictionaries Capability = "manage-dictionaries"
	CapViewReports        Capability = "view-reports"
	CapViewStatistics     Capability = "view-statistics"
	CapUseCart            Capability = "use-cart"
	CapPlaceOrders        Capability = "place-orders"
	CapEditProfile        Capability = "edit-profile"
)

// CapabilitySet answers membership questions for a resolved session.
type CapabilitySet map[Capability]struct{}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the capabilities in a stable order suitable for responses.
func (s CapabilitySet) List() []Capability {
	all := []Capability{
		CapManageUsers, CapManageClients, CapManageProducts, CapManageDictionaries,
		CapViewReports, CapViewStatistics, CapUseCart, CapPlaceOrders, CapEditProfile,
	}
	out := make([]Capability, 0, len(s))
	for _, c := range all {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

var roleCapabilities = map[string][]Capability{
	RoleAdmin: {
		CapManageUsers, CapManageClients, CapManageProducts, CapManageDictionaries,
		CapViewReports, CapViewStatistics, CapEditProfile,
	},
	RoleManager: {
		CapManageClients, CapManageProducts, CapViewReports, CapViewStatistics,
		CapEditProfile,
	},
	RoleClient: {
		CapUseCart, CapPlaceOrders, CapEditProfile,
	},
}

// Capabilities resolves a role list into the union of per-role permissions.
// Unknown roles contribute nothing.
func Capabilities(roles []string) CapabilitySet {
	set := CapabilitySet{}
	for _, role := range roles {
		for _, cap := range roleCapabilities[role] {
			set[cap] = struct{}{}
		}
	}
	return set
}
