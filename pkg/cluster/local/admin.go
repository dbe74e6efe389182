package local

import (
	"context"
	"net"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ajitpratap0/kvbridge/pkg/cluster"
	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

// predefinedRoles exist on every cluster and cannot be changed.
var predefinedRoles = map[string]cluster.PrivilegeCode{
	"user-admin":     cluster.PrivUserAdmin,
	"sys-admin":      cluster.PrivSysAdmin,
	"data-admin":     cluster.PrivDataAdmin,
	"udf-admin":      cluster.PrivUDFAdmin,
	"sindex-admin":   cluster.PrivSIndexAdmin,
	"read":           cluster.PrivRead,
	"read-write":     cluster.PrivReadWrite,
	"read-write-udf": cluster.PrivReadWriteUDF,
	"write":          cluster.PrivWrite,
	"truncate":       cluster.PrivTruncate,
}

type user struct {
	passwordHash []byte
	roles        []string
}

func adminErr(code kverrors.ResultCode, subject string) error {
	return kverrors.FromCode(code, code.String()+": "+subject)
}

func (c *Cluster) CreateUser(ctx context.Context, _ *policy.Admin, name, password string, roles []string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if name == "" {
		return adminErr(kverrors.CodeInvalidUser, "empty user name")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	if _, ok := c.users[name]; ok {
		return adminErr(kverrors.CodeUserAlreadyExists, name)
	}
	if err := c.checkRoles(roles); err != nil {
		return err
	}
	c.users[name] = &user{passwordHash: hash, roles: mergeRoles(nil, roles)}
	c.logger.Info("user created", zap.String("user", name))
	return nil
}

func (c *Cluster) DropUser(ctx context.Context, _ *policy.Admin, name string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	if _, ok := c.users[name]; !ok {
		return adminErr(kverrors.CodeInvalidUser, name)
	}
	delete(c.users, name)
	return nil
}

func (c *Cluster) ChangePassword(ctx context.Context, _ *policy.Admin, name, password string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	u, ok := c.users[name]
	if !ok {
		return adminErr(kverrors.CodeInvalidUser, name)
	}
	u.passwordHash = hash
	return nil
}

// Authenticate checks a user's password.
func (c *Cluster) Authenticate(name, password string) error {
	c.metaMu.RLock()
	u, ok := c.users[name]
	c.metaMu.RUnlock()
	if !ok {
		return adminErr(kverrors.CodeInvalidUser, name)
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return adminErr(kverrors.CodeInvalidCredential, name)
	}
	return nil
}

func (c *Cluster) GrantRoles(ctx context.Context, _ *policy.Admin, name string, roles []string) error {
	return c.updateUser(ctx, name, roles, func(u *user) { u.roles = mergeRoles(u.roles, roles) })
}

func (c *Cluster) RevokeRoles(ctx context.Context, _ *policy.Admin, name string, roles []string) error {
	return c.updateUser(ctx, name, roles, func(u *user) {
		kept := u.roles[:0]
		for _, r := range u.roles {
			if !contains(roles, r) {
				kept = append(kept, r)
			}
		}
		u.roles = kept
	})
}

func (c *Cluster) updateUser(ctx context.Context, name string, roles []string, fn func(*user)) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	u, ok := c.users[name]
	if !ok {
		return adminErr(kverrors.CodeInvalidUser, name)
	}
	if err := c.checkRoles(roles); err != nil {
		return err
	}
	fn(u)
	return nil
}

func (c *Cluster) QueryUser(ctx context.Context, _ *policy.Admin, name string) (*cluster.UserInfo, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	u, ok := c.users[name]
	if !ok {
		return nil, adminErr(kverrors.CodeInvalidUser, name)
	}
	return &cluster.UserInfo{User: name, Roles: append([]string(nil), u.roles...)}, nil
}

func (c *Cluster) QueryUsers(ctx context.Context, _ *policy.Admin) ([]*cluster.UserInfo, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	out := make([]*cluster.UserInfo, 0, len(c.users))
	for name, u := range c.users {
		out = append(out, &cluster.UserInfo{User: name, Roles: append([]string(nil), u.roles...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out, nil
}

func (c *Cluster) CreateRole(ctx context.Context, _ *policy.Admin, role cluster.RoleInfo) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if role.Name == "" {
		return adminErr(kverrors.CodeInvalidRole, "empty role name")
	}
	if err := checkPrivileges(role.Privileges); err != nil {
		return err
	}
	if err := checkWhitelist(role.Whitelist); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	if _, ok := predefinedRoles[role.Name]; ok {
		return adminErr(kverrors.CodeRoleAlreadyExists, role.Name)
	}
	if _, ok := c.roles[role.Name]; ok {
		return adminErr(kverrors.CodeRoleAlreadyExists, role.Name)
	}
	stored := cloneRole(&role)
	c.roles[role.Name] = stored
	c.logger.Info("role created", zap.String("role", role.Name), zap.Int("privileges", len(role.Privileges)))
	return nil
}

func (c *Cluster) DropRole(ctx context.Context, _ *policy.Admin, name string) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	if _, ok := c.roles[name]; !ok {
		return adminErr(kverrors.CodeInvalidRole, name)
	}
	delete(c.roles, name)
	for _, u := range c.users {
		kept := u.roles[:0]
		for _, r := range u.roles {
			if r != name {
				kept = append(kept, r)
			}
		}
		u.roles = kept
	}
	return nil
}

func (c *Cluster) GrantPrivileges(ctx context.Context, _ *policy.Admin, name string, privileges []cluster.Privilege) error {
	if err := checkPrivileges(privileges); err != nil {
		return err
	}
	return c.updateRole(ctx, name, func(r *cluster.RoleInfo) error {
		for _, p := range privileges {
			if !hasPrivilege(r.Privileges, p) {
				r.Privileges = append(r.Privileges, p)
			}
		}
		return nil
	})
}

func (c *Cluster) RevokePrivileges(ctx context.Context, _ *policy.Admin, name string, privileges []cluster.Privilege) error {
	if err := checkPrivileges(privileges); err != nil {
		return err
	}
	return c.updateRole(ctx, name, func(r *cluster.RoleInfo) error {
		kept := r.Privileges[:0]
		for _, p := range r.Privileges {
			if !hasPrivilege(privileges, p) {
				kept = append(kept, p)
			}
		}
		r.Privileges = kept
		return nil
	})
}

func (c *Cluster) SetWhitelist(ctx context.Context, _ *policy.Admin, name string, whitelist []string) error {
	if err := checkWhitelist(whitelist); err != nil {
		return err
	}
	return c.updateRole(ctx, name, func(r *cluster.RoleInfo) error {
		r.Whitelist = append([]string(nil), whitelist...)
		return nil
	})
}

func (c *Cluster) SetQuotas(ctx context.Context, _ *policy.Admin, name string, readQuota, writeQuota uint32) error {
	return c.updateRole(ctx, name, func(r *cluster.RoleInfo) error {
		r.ReadQuota, r.WriteQuota = readQuota, writeQuota
		return nil
	})
}

func (c *Cluster) updateRole(ctx context.Context, name string, fn func(*cluster.RoleInfo) error) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	c.metaMu.Lock()
	defer c.metaMu.Unlock()

	r, ok := c.roles[name]
	if !ok {
		return adminErr(kverrors.CodeInvalidRole, name)
	}
	return fn(r)
}

func (c *Cluster) QueryRole(ctx context.Context, _ *policy.Admin, name string) (*cluster.RoleInfo, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	if code, ok := predefinedRoles[name]; ok {
		return &cluster.RoleInfo{Name: name, Privileges: []cluster.Privilege{{Code: code}}}, nil
	}
	r, ok := c.roles[name]
	if !ok {
		return nil, adminErr(kverrors.CodeInvalidRole, name)
	}
	return cloneRole(r), nil
}

func (c *Cluster) QueryRoles(ctx context.Context, _ *policy.Admin) ([]*cluster.RoleInfo, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()

	out := make([]*cluster.RoleInfo, 0, len(predefinedRoles)+len(c.roles))
	for name, code := range predefinedRoles {
		out = append(out, &cluster.RoleInfo{Name: name, Privileges: []cluster.Privilege{{Code: code}}})
	}
	for _, r := range c.roles {
		out = append(out, cloneRole(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// checkRoles requires every role to exist. The caller holds metaMu.
func (c *Cluster) checkRoles(roles []string) error {
	for _, r := range roles {
		if _, ok := predefinedRoles[r]; ok {
			continue
		}
		if _, ok := c.roles[r]; !ok {
			return adminErr(kverrors.CodeInvalidRole, r)
		}
	}
	return nil
}

func checkPrivileges(privileges []cluster.Privilege) error {
	for _, p := range privileges {
		if !p.Code.Valid() {
			return adminErr(kverrors.CodeInvalidPrivilege, "unknown privilege code")
		}
		global := p.Code < cluster.PrivRead
		if global && (p.Namespace != "" || p.Set != "") {
			return adminErr(kverrors.CodeInvalidPrivilege, "global privilege cannot be scoped")
		}
		if p.Set != "" && p.Namespace == "" {
			return adminErr(kverrors.CodeInvalidPrivilege, "set scope requires a namespace")
		}
	}
	return nil
}

func checkWhitelist(whitelist []string) error {
	for _, addr := range whitelist {
		if net.ParseIP(addr) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(addr); err != nil {
			return adminErr(kverrors.CodeInvalidWhitelist, addr)
		}
	}
	return nil
}

func hashPassword(password string) ([]byte, error) {
	if strings.TrimSpace(password) == "" {
		return nil, adminErr(kverrors.CodeInvalidPassword, "empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, adminErr(kverrors.CodeForbiddenPassword, err.Error())
	}
	return hash, nil
}

func hasPrivilege(list []cluster.Privilege, p cluster.Privilege) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

func mergeRoles(have, add []string) []string {
	out := append([]string(nil), have...)
	for _, r := range add {
		if !contains(out, r) {
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func cloneRole(r *cluster.RoleInfo) *cluster.RoleInfo {
	c := *r
	c.Privileges = append([]cluster.Privilege(nil), r.Privileges...)
	c.Whitelist = append([]string(nil), r.Whitelist...)
	return &c
}
