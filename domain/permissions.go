package domain

// Capability flag keys as stored in the user record
const (
	PermCanAdd           = "canAdd"
	PermCanEdit          = "canEdit"
	PermCanDelete        = "canDelete"
	PermCanExport        = "canExport"
	PermCanAccessReports = "canAccessReports"
	PermCanViewTeam      = "canViewTeam"
	PermCanManageUsers   = "canManageUsers"

	// legacyPermCanModify is the key older clients wrote instead of canEdit
	legacyPermCanModify = "canModify"
)

// PermissionKeys lists every recognised capability in a stable order
var PermissionKeys = []string{
	PermCanAdd,
	PermCanEdit,
	PermCanDelete,
	PermCanExport,
	PermCanAccessReports,
	PermCanViewTeam,
	PermCanManageUsers,
}

// Permissions is the resolved capability set of a managed user.
// Every flag is always present.
type Permissions struct {
	CanAdd           bool `json:"canAdd"`
	CanEdit          bool `json:"canEdit"`
	CanDelete        bool `json:"canDelete"`
	CanExport        bool `json:"canExport"`
	CanAccessReports bool `json:"canAccessReports"`
	CanViewTeam      bool `json:"canViewTeam"`
	CanManageUsers   bool `json:"canManageUsers"`
}

// ResolvePermissions normalises a stored permission map. Only a boolean true
// grants a capability; missing keys, nil maps and values of any other type
// resolve to false.
func ResolvePermissions(raw map[string]any) Permissions {
	return Permissions{
		CanAdd:           flag(raw, PermCanAdd),
		CanEdit:          resolveCanEdit(raw),
		CanDelete:        flag(raw, PermCanDelete),
		CanExport:        flag(raw, PermCanExport),
		CanAccessReports: flag(raw, PermCanAccessReports),
		CanViewTeam:      flag(raw, PermCanViewTeam),
		CanManageUsers:   flag(raw, PermCanManageUsers),
	}
}

// resolveCanEdit is the compatibility shim for records written before the
// canEdit key existed: when canEdit is absent the legacy canModify key is
// consulted before defaulting to false. A present canEdit always wins, even
// when it is not a boolean.
func resolveCanEdit(raw map[string]any) bool {
	if _, ok := raw[PermCanEdit]; ok {
		return flag(raw, PermCanEdit)
	}
	return flag(raw, legacyPermCanModify)
}

func flag(raw map[string]any, key string) bool {
	v, ok := raw[key].(bool)
	return ok && v
}

// Allows reports whether the named capability is granted
func (p Permissions) Allows(key string) bool {
	switch key {
	case PermCanAdd:
		return p.CanAdd
	case PermCanEdit:
		return p.CanEdit
	case PermCanDelete:
		return p.CanDelete
	case PermCanExport:
		return p.CanExport
	case PermCanAccessReports:
		return p.CanAccessReports
	case PermCanViewTeam:
		return p.CanViewTeam
	case PermCanManageUsers:
		return p.CanManageUsers
	}
	return false
}

// ToMap converts resolved permissions into the canonical stored form.
// The legacy key is never written back.
func (p Permissions) ToMap() map[string]any {
	return map[string]any{
		PermCanAdd:           p.CanAdd,
		PermCanEdit:          p.CanEdit,
		PermCanDelete:        p.CanDelete,
		PermCanExport:        p.CanExport,
		PermCanAccessReports: p.CanAccessReports,
		PermCanViewTeam:      p.CanViewTeam,
		PermCanManageUsers:   p.CanManageUsers,
	}
}

// MergePermissions applies boolean updates for recognised keys on top of the
// resolved current set. Unknown keys are rejected.
func MergePermissions(current map[string]any, updates map[string]bool) (map[string]any, error) {
	resolved := ResolvePermissions(current).ToMap()
	for k, v := range updates {
		if _, ok := resolved[k]; !ok {
			return nil, NewValidationError("permissions", "unknown capability %q", k)
		}
		resolved[k] = v
	}
	return resolved, nil
}

// IsRestricted reports whether capability flags apply to the user. Only
// users created under a manager are gated; self-registered accounts and
// elevated roles are not.
func (u *User) IsRestricted() bool {
	return u.Role == RoleUser && u.ManagerID != nil
}

// Can reports whether the user may perform the capability
func (u *User) Can(key string) bool {
	if !u.IsRestricted() {
		return true
	}
	return ResolvePermissions(u.Permissions).Allows(key)
}
