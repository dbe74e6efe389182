package client

import (
	"context"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

type (
	// Privilege is a permission, optionally scoped to a namespace and set.
	Privilege = cluster.Privilege
	// UserInfo describes a user.
	UserInfo = cluster.UserInfo
	// RoleInfo describes a role.
	RoleInfo = cluster.RoleInfo
)

// adminQuery prepares an admin call returning T.
func adminQuery[T any](b *bridge, op string, o callOptions, call func(context.Context, *policy.Admin) (T, error)) invocation[T] {
	p, err := b.adminPolicy(o)
	if err != nil {
		return failed[T](op, err)
	}
	return invoke(op, "", "", func(ctx context.Context) (T, error) {
		return call(ctx, p)
	}, same[T])
}

func (b *bridge) admin(op string, o callOptions, call func(context.Context, *policy.Admin) error) invocation[none] {
	return adminQuery(b, op, o, func(ctx context.Context, p *policy.Admin) (none, error) {
		return none{}, call(ctx, p)
	})
}

func required(op string, names ...string) error {
	for _, n := range names {
		if n == "" {
			return kverrors.Newf(kverrors.InvalidArgError, "%s: user and role names must not be empty", op)
		}
	}
	return nil
}

func checkPrivileges(privileges []Privilege) error {
	if len(privileges) == 0 {
		return kverrors.New(kverrors.InvalidArgError, "at least one privilege is required")
	}
	for _, p := range privileges {
		if !p.Code.Valid() {
			return kverrors.Newf(kverrors.InvalidArgError, "invalid privilege code %d", p.Code)
		}
	}
	return nil
}

func (b *bridge) adminCreateUser(user, password string, roles []string, o callOptions) invocation[none] {
	if err := required("admin_create_user", user); err != nil {
		return failed[none]("admin_create_user", err)
	}
	return b.admin("admin_create_user", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.CreateUser(ctx, p, user, password, roles)
	})
}

func (b *bridge) adminDropUser(user string, o callOptions) invocation[none] {
	if err := required("admin_drop_user", user); err != nil {
		return failed[none]("admin_drop_user", err)
	}
	return b.admin("admin_drop_user", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.DropUser(ctx, p, user)
	})
}

func (b *bridge) adminChangePassword(user, password string, o callOptions) invocation[none] {
	if err := required("admin_change_password", user); err != nil {
		return failed[none]("admin_change_password", err)
	}
	return b.admin("admin_change_password", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.ChangePassword(ctx, p, user, password)
	})
}

func (b *bridge) adminGrantRoles(user string, roles []string, o callOptions) invocation[none] {
	if err := required("admin_grant_roles", user); err != nil {
		return failed[none]("admin_grant_roles", err)
	}
	return b.admin("admin_grant_roles", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.GrantRoles(ctx, p, user, roles)
	})
}

func (b *bridge) adminRevokeRoles(user string, roles []string, o callOptions) invocation[none] {
	if err := required("admin_revoke_roles", user); err != nil {
		return failed[none]("admin_revoke_roles", err)
	}
	return b.admin("admin_revoke_roles", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.RevokeRoles(ctx, p, user, roles)
	})
}

func (b *bridge) adminQueryUser(user string, o callOptions) invocation[*UserInfo] {
	if err := required("admin_query_user", user); err != nil {
		return failed[*UserInfo]("admin_query_user", err)
	}
	return adminQuery(b, "admin_query_user", o, func(ctx context.Context, p *policy.Admin) (*UserInfo, error) {
		return b.cluster.QueryUser(ctx, p, user)
	})
}

func (b *bridge) adminQueryUsers(o callOptions) invocation[[]*UserInfo] {
	return adminQuery(b, "admin_query_users", o, func(ctx context.Context, p *policy.Admin) ([]*UserInfo, error) {
		return b.cluster.QueryUsers(ctx, p)
	})
}

func (b *bridge) adminCreateRole(role RoleInfo, o callOptions) invocation[none] {
	if err := required("admin_create_role", role.Name); err != nil {
		return failed[none]("admin_create_role", err)
	}
	for _, p := range role.Privileges {
		if !p.Code.Valid() {
			return failed[none]("admin_create_role", kverrors.Newf(kverrors.InvalidArgError, "invalid privilege code %d", p.Code))
		}
	}
	return b.admin("admin_create_role", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.CreateRole(ctx, p, role)
	})
}

func (b *bridge) adminDropRole(role string, o callOptions) invocation[none] {
	if err := required("admin_drop_role", role); err != nil {
		return failed[none]("admin_drop_role", err)
	}
	return b.admin("admin_drop_role", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.DropRole(ctx, p, role)
	})
}

func (b *bridge) adminGrantPrivileges(role string, privileges []Privilege, o callOptions) invocation[none] {
	if err := required("admin_grant_privileges", role); err != nil {
		return failed[none]("admin_grant_privileges", err)
	}
	if err := checkPrivileges(privileges); err != nil {
		return failed[none]("admin_grant_privileges", err)
	}
	return b.admin("admin_grant_privileges", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.GrantPrivileges(ctx, p, role, privileges)
	})
}

func (b *bridge) adminRevokePrivileges(role string, privileges []Privilege, o callOptions) invocation[none] {
	if err := required("admin_revoke_privileges", role); err != nil {
		return failed[none]("admin_revoke_privileges", err)
	}
	if err := checkPrivileges(privileges); err != nil {
		return failed[none]("admin_revoke_privileges", err)
	}
	return b.admin("admin_revoke_privileges", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.RevokePrivileges(ctx, p, role, privileges)
	})
}

func (b *bridge) adminQueryRole(role string, o callOptions) invocation[*RoleInfo] {
	if err := required("admin_query_role", role); err != nil {
		return failed[*RoleInfo]("admin_query_role", err)
	}
	return adminQuery(b, "admin_query_role", o, func(ctx context.Context, p *policy.Admin) (*RoleInfo, error) {
		return b.cluster.QueryRole(ctx, p, role)
	})
}

func (b *bridge) adminQueryRoles(o callOptions) invocation[[]*RoleInfo] {
	return adminQuery(b, "admin_query_roles", o, func(ctx context.Context, p *policy.Admin) ([]*RoleInfo, error) {
		return b.cluster.QueryRoles(ctx, p)
	})
}

func (b *bridge) adminSetWhitelist(role string, whitelist []string, o callOptions) invocation[none] {
	if err := required("admin_set_whitelist", role); err != nil {
		return failed[none]("admin_set_whitelist", err)
	}
	return b.admin("admin_set_whitelist", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.SetWhitelist(ctx, p, role, whitelist)
	})
}

func (b *bridge) adminSetQuotas(role string, readQuota, writeQuota uint32, o callOptions) invocation[none] {
	if err := required("admin_set_quotas", role); err != nil {
		return failed[none]("admin_set_quotas", err)
	}
	return b.admin("admin_set_quotas", o, func(ctx context.Context, p *policy.Admin) error {
		return b.cluster.SetQuotas(ctx, p, role, readQuota, writeQuota)
	})
}
