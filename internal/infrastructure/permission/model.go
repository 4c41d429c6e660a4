package permission

import "github.com/bodrix-ai/bodrix/internal/shared/authorization"

// rbacModel grants (obj, act) pairs to roles. Roles inherit through g.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// defaultPolicies are "resource:action" permissions held directly by each role.
var defaultPolicies = map[authorization.UserRole][]string{
	authorization.RoleUser: {
		"chat:use",
		"analytics:read",
	},
	authorization.RolePremium: {
		"analytics:advanced",
		"automation:run",
		"integrations:manage",
		"settings:api",
		"settings:branding",
	},
	authorization.RoleAdmin: {
		"billing:manage",
		"marketing:manage",
		"security:audit",
		"users:manage",
	},
}

// defaultInheritance lists child -> parent role links.
var defaultInheritance = [][2]authorization.UserRole{
	{authorization.RolePremium, authorization.RoleUser},
	{authorization.RoleAdmin, authorization.RolePremium},
}
