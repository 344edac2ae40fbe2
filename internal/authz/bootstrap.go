package authz

import "fmt"

// RoleSeed is one preset staff role.
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

// BuiltinRoleSeeds defines the preset staff roles: a principal with full
// access, a read-only auditor, a registrar who manages enrollment and parent
// accounts, and an accountant who audits the payment ledger.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "principal",
			Policies: []Policy{
				{Object: "/admin/*", Action: "*"},
			},
		},
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
		},
		{
			Role:     "registrar",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/students", Action: "*"},
				{Object: "/admin/students/:id", Action: "*"},
				{Object: "/admin/parents", Action: "*"},
				{Object: "/admin/parents/:id", Action: "*"},
			},
		},
		{
			Role:     "accountant",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/payments", Action: "GET"},
				{Object: "/admin/payments/:id", Action: "GET"},
				{Object: "/admin/payments/:id/verify", Action: "PUT"},
				{Object: "/admin/payments/stats", Action: "GET"},
				{Object: "/admin/payments/reconcile", Action: "POST"},
				{Object: "/admin/students/:id/remind", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles seeds the preset roles and their policies.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return err
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
