package domain

import "fmt"

// Permission is a capability gated by the permission model. The set is closed;
// adding a value means adding a row for it to every policy table below.
type Permission uint8

const (
	PermissionUploadPlugin Permission = iota + 1
	PermissionDeletePlugin
	PermissionManageUsers
)

// Permissions lists every defined capability.
var Permissions = []Permission{
	PermissionUploadPlugin,
	PermissionDeletePlugin,
	PermissionManageUsers,
}

func (p Permission) String() string {
	switch p {
	case PermissionUploadPlugin:
		return "upload_plugin"
	case PermissionDeletePlugin:
		return "delete_plugin"
	case PermissionManageUsers:
		return "manage_users"
	default:
		return fmt.Sprintf("permission(%d)", uint8(p))
	}
}

// userPolicy maps role -> permission -> decision. Missing entries deny.
var userPolicy = map[Role]map[Permission]bool{
	RoleAdmin: {
		PermissionUploadPlugin: true,
		PermissionDeletePlugin: true,
		PermissionManageUsers:  true,
	},
	RoleUser: {
		PermissionUploadPlugin: true,
		PermissionDeletePlugin: false,
		PermissionManageUsers:  false,
	},
	RoleGuest: {
		PermissionUploadPlugin: false,
		PermissionDeletePlugin: false,
		PermissionManageUsers:  false,
	},
}

// machinePolicy applies to every machine key regardless of group.
var machinePolicy = map[Permission]bool{
	PermissionUploadPlugin: true,
	PermissionDeletePlugin: false,
	PermissionManageUsers:  false,
}
