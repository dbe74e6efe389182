package aerospike

import (
	"context"

	aero "github.com/aerospike/aerospike-client-go/v7"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

// admin runs fn with the admin policy and the live client.
func (c *Cluster) admin(ctx context.Context, p *policy.Admin, fn func(*aero.Client, *aero.AdminPolicy) aero.Error) error {
	client, err := c.conn(ctx)
	if err != nil {
		return err
	}
	ap, err := adminPolicy(ctx, p)
	if err != nil {
		return err
	}
	return mapError(fn(client, ap), kverrors.OpGeneric)
}

func (c *Cluster) CreateUser(ctx context.Context, p *policy.Admin, user, password string, roles []string) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.CreateUser(ap, user, password, roles)
	})
}

func (c *Cluster) DropUser(ctx context.Context, p *policy.Admin, user string) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.DropUser(ap, user)
	})
}

func (c *Cluster) ChangePassword(ctx context.Context, p *policy.Admin, user, password string) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.ChangePassword(ap, user, password)
	})
}

func (c *Cluster) GrantRoles(ctx context.Context, p *policy.Admin, user string, roles []string) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.GrantRoles(ap, user, roles)
	})
}

func (c *Cluster) RevokeRoles(ctx context.Context, p *policy.Admin, user string, roles []string) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.RevokeRoles(ap, user, roles)
	})
}

func (c *Cluster) QueryUser(ctx context.Context, p *policy.Admin, user string) (*cluster.UserInfo, error) {
	var out *cluster.UserInfo
	err := c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		u, aerr := client.QueryUser(ap, user)
		if aerr == nil && u != nil {
			out = fromAeroUser(u)
		}
		return aerr
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, kverrors.FromCode(kverrors.CodeInvalidUser, "").WithDetail("user", user)
	}
	return out, nil
}

func (c *Cluster) QueryUsers(ctx context.Context, p *policy.Admin) ([]*cluster.UserInfo, error) {
	var out []*cluster.UserInfo
	err := c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		users, aerr := client.QueryUsers(ap)
		for _, u := range users {
			out = append(out, fromAeroUser(u))
		}
		return aerr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Cluster) CreateRole(ctx context.Context, p *policy.Admin, role cluster.RoleInfo) error {
	privs, err := toAeroPrivileges(role.Privileges)
	if err != nil {
		return err
	}
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.CreateRole(ap, role.Name, privs, role.Whitelist, role.ReadQuota, role.WriteQuota)
	})
}

func (c *Cluster) DropRole(ctx context.Context, p *policy.Admin, role string) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.DropRole(ap, role)
	})
}

func (c *Cluster) GrantPrivileges(ctx context.Context, p *policy.Admin, role string, privileges []cluster.Privilege) error {
	privs, err := toAeroPrivileges(privileges)
	if err != nil {
		return err
	}
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.GrantPrivileges(ap, role, privs)
	})
}

func (c *Cluster) RevokePrivileges(ctx context.Context, p *policy.Admin, role string, privileges []cluster.Privilege) error {
	privs, err := toAeroPrivileges(privileges)
	if err != nil {
		return err
	}
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.RevokePrivileges(ap, role, privs)
	})
}

func (c *Cluster) QueryRole(ctx context.Context, p *policy.Admin, role string) (*cluster.RoleInfo, error) {
	var out *cluster.RoleInfo
	err := c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		r, aerr := client.QueryRole(ap, role)
		if aerr == nil && r != nil {
			out = fromAeroRole(r)
		}
		return aerr
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, kverrors.FromCode(kverrors.CodeInvalidRole, "").WithDetail("role", role)
	}
	return out, nil
}

func (c *Cluster) QueryRoles(ctx context.Context, p *policy.Admin) ([]*cluster.RoleInfo, error) {
	var out []*cluster.RoleInfo
	err := c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		roles, aerr := client.QueryRoles(ap)
		for _, r := range roles {
			out = append(out, fromAeroRole(r))
		}
		return aerr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Cluster) SetWhitelist(ctx context.Context, p *policy.Admin, role string, whitelist []string) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.SetWhitelist(ap, role, whitelist)
	})
}

func (c *Cluster) SetQuotas(ctx context.Context, p *policy.Admin, role string, readQuota, writeQuota uint32) error {
	return c.admin(ctx, p, func(client *aero.Client, ap *aero.AdminPolicy) aero.Error {
		return client.SetQuotas(ap, role, readQuota, writeQuota)
	})
}

func fromAeroUser(u *aero.UserRoles) *cluster.UserInfo {
	return &cluster.UserInfo{User: u.User, Roles: u.Roles, ConnsInUse: u.ConnsInUse}
}

func fromAeroRole(r *aero.Role) *cluster.RoleInfo {
	out := &cluster.RoleInfo{
		Name:       r.Name,
		Whitelist:  r.Whitelist,
		ReadQuota:  r.ReadQuota,
		WriteQuota: r.WriteQuota,
	}
	for _, p := range r.Privileges {
		if priv, ok := fromAeroPrivilege(p); ok {
			out.Privileges = append(out.Privileges, priv)
		}
	}
	return out
}

func toAeroPrivileges(privileges []cluster.Privilege) ([]aero.Privilege, error) {
	out := make([]aero.Privilege, len(privileges))
	for i, p := range privileges {
		priv, err := toAeroPrivilege(p)
		if err != nil {
			return nil, err
		}
		out[i] = priv
	}
	return out, nil
}

func toAeroPrivilege(p cluster.Privilege) (aero.Privilege, error) {
	out := aero.Privilege{Namespace: p.Namespace, SetName: p.Set}
	switch p.Code {
	case cluster.PrivUserAdmin:
		out.Code = aero.UserAdmin
	case cluster.PrivSysAdmin:
		out.Code = aero.SysAdmin
	case cluster.PrivDataAdmin:
		out.Code = aero.DataAdmin
	case cluster.PrivUDFAdmin:
		out.Code = aero.UDFAdmin
	case cluster.PrivSIndexAdmin:
		out.Code = aero.SIndexAdmin
	case cluster.PrivRead:
		out.Code = aero.Read
	case cluster.PrivReadWrite:
		out.Code = aero.ReadWrite
	case cluster.PrivReadWriteUDF:
		out.Code = aero.ReadWriteUDF
	case cluster.PrivWrite:
		out.Code = aero.Write
	case cluster.PrivTruncate:
		out.Code = aero.Truncate
	default:
		return out, kverrors.FromCode(kverrors.CodeInvalidPrivilege, "").WithDetail("code", int(p.Code))
	}
	return out, nil
}

func fromAeroPrivilege(p aero.Privilege) (cluster.Privilege, bool) {
	out := cluster.Privilege{Namespace: p.Namespace, Set: p.SetName}
	switch p.Code {
	case aero.UserAdmin:
		out.Code = cluster.PrivUserAdmin
	case aero.SysAdmin:
		out.Code = cluster.PrivSysAdmin
	case aero.DataAdmin:
		out.Code = cluster.PrivDataAdmin
	case aero.UDFAdmin:
		out.Code = cluster.PrivUDFAdmin
	case aero.SIndexAdmin:
		out.Code = cluster.PrivSIndexAdmin
	case aero.Read:
		out.Code = cluster.PrivRead
	case aero.ReadWrite:
		out.Code = cluster.PrivReadWrite
	case aero.ReadWriteUDF:
		out.Code = cluster.PrivReadWriteUDF
	case aero.Write:
		out.Code = cluster.PrivWrite
	case aero.Truncate:
		out.Code = cluster.PrivTruncate
	default:
		return out, false
	}
	return out, true
}
