package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/eerojala/My-video-game-collection/models"
)

type Resource string

const (
	ResourcePlatforms Resource = "platforms"
	ResourceGames     Resource = "games"
	ResourceUserGames Resource = "usergames"
	ResourceStats     Resource = "stats"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionWrite  Action = "write"
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type rule struct {
	role     models.Role
	resource Resource
	action   Action
}

// Catalog writes are Admin only; any signed-in user may add to their own
// collection.
var defaultRules = []rule{
	{models.RoleAdmin, ResourcePlatforms, ActionWrite},
	{models.RoleAdmin, ResourceGames, ActionWrite},
	{models.RoleAdmin, ResourceStats, ActionRead},
	{models.RoleAdmin, ResourceUserGames, ActionCreate},
	{models.RoleMember, ResourceUserGames, ActionCreate},
}

// Policy answers role permission questions through a casbin enforcer.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("load policy model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for _, r := range defaultRules {
		if _, err := enforcer.AddPolicy(string(r.role), string(r.resource), string(r.action)); err != nil {
			return nil, fmt.Errorf("add policy %v: %w", r, err)
		}
	}
	return &Policy{enforcer: enforcer}, nil
}

func (p *Policy) Allowed(role models.Role, resource Resource, action Action) bool {
	ok, err := p.enforcer.Enforce(string(role), string(resource), string(action))
	return err == nil && ok
}
