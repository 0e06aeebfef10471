// Package rbac resuelve autorización por rol: tabla rol -> permisos y jerarquía de roles.
// Es configuración estática e inmutable del proceso; no hace I/O.
package rbac

import "github.com/jhoicas/Auth-api/internal/domain/entity"

// Permission capacidad fina con formato recurso:acción.
type Permission string

const (
	PermUserRead      Permission = "user:read"
	PermUserWrite     Permission = "user:write"
	PermUserDelete    Permission = "user:delete"
	PermUserUpdate    Permission = "user:update"
	PermProductRead   Permission = "product:read"
	PermProductWrite  Permission = "product:write"
	PermProductDelete Permission = "product:delete"
	PermProductUpdate Permission = "product:update"
	PermAdminAccess   Permission = "admin:access"
)

// rolePermissions única fuente de verdad del modelo de autorización.
// El orden de cada lista es el que se expone en PermissionsForRole.
var rolePermissions = map[entity.Role][]Permission{
	entity.RoleAdmin: {
		PermAdminAccess,
		PermUserRead,
		PermUserWrite,
		PermUserDelete,
		PermUserUpdate,
		PermProductRead,
		PermProductWrite,
		PermProductDelete,
		PermProductUpdate,
	},
	entity.RoleManager: {
		PermUserRead,
		PermProductRead,
		PermProductWrite,
		PermProductUpdate,
	},
	entity.RoleUser: {
		PermUserRead,
		PermProductRead,
	},
}

// roleStrength orden total de roles, independiente de los permisos.
var roleStrength = map[entity.Role]int{
	entity.RoleAdmin:   3,
	entity.RoleManager: 2,
	entity.RoleUser:    1,
}

// HasPermission true si role tiene perm. Un rol desconocido no tiene permisos.
func HasPermission(role entity.Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// HasAny true si role tiene al menos uno de perms. Lista vacía: false.
func HasAny(role entity.Role, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAll true si role tiene todos los perms. Lista vacía: true.
func HasAll(role entity.Role, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(role, p) {
			return false
		}
	}
	return true
}

// HasRoleAtLeast compara fuerza: admin(3) > manager(2) > user(1).
// Un rol desconocido (fuerza 0) nunca alcanza el mínimo; un mínimo desconocido tampoco se satisface.
func HasRoleAtLeast(role, minimum entity.Role) bool {
	need, ok := roleStrength[minimum]
	if !ok {
		return false
	}
	return roleStrength[role] >= need
}

// PermissionsForRole copia de los permisos del rol; nil para roles desconocidos.
func PermissionsForRole(role entity.Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
