package admin

// rolePolicyService is the subset of permission.Enforcer used by PermissionHandler.
type rolePolicyService interface {
	PermissionsForRole(role string) ([]string, error)
	Enforce(role, permission string) (bool, error)
	AddPolicy(role, permission string) error
	RemovePolicy(role, permission string) error
	LoadPolicy() error
}
