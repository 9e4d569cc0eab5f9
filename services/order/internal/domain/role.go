package domain

import (
	"errors"
	"fmt"
)

type Role uint8

const (
	RoleVendor Role = iota + 1
	RoleServer
	RoleKitchen
	RoleBilling
)

var roleNames = [...]string{
	RoleVendor:  "Vendor",
	RoleServer:  "Server",
	RoleKitchen: "Kitchen",
	RoleBilling: "Billing",
}

var ErrUnknownRole = errors.New("unknown staff role")

func AllRoles() []Role {
	return []Role{RoleVendor, RoleServer, RoleKitchen, RoleBilling}
}

func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles() {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	return r >= RoleVendor && r <= RoleBilling
}

func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
	return roleNames[r]
}

// IsOwner reports whether the role is the vendor owning the shop.
func (r Role) IsOwner() bool {
	return r == RoleVendor
}
