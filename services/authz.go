package services

import "minishop/models"

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

// Policy decides whether a role set may perform an action.
type Policy interface {
	Allows(roles []string) bool
}

// AnyRole allows callers holding at least one of the listed roles.
type AnyRole []string

func (p AnyRole) Allows(roles []string) bool {
	for _, want := range p {
		for _, have := range roles {
			if want == have {
				return true
			}
		}
	}
	return false
}

// Authenticated allows every signed-in caller.
type Authenticated struct{}

func (Authenticated) Allows([]string) bool { return true }

// Policies used by the HTTP routes.
var (
	AdminOnly       Policy = AnyRole{models.RoleAdmin}
	ShopperOnly     Policy = AnyRole{models.RoleUser}
	CatalogManagers Policy = AnyRole{models.RoleAdmin, models.RoleProductManager}
	AccountOfficers Policy = AnyRole{models.RoleAdmin, models.RoleAccountOfficer}
	PaymentManagers Policy = AnyRole{models.RoleAdmin, models.RoleSalesManager, models.RoleManager}
)
