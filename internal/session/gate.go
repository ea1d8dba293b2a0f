package session

import (
	"errors"

	"github.com/annapurna-pos/api/internal/enum"
)

// ErrUnknownRole is returned for roles outside the closed set. Policy is
// deny: an unrecognized role never falls through to a privileged view.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a raw role string into the closed Role set.
func ParseRole(s string) (enum.Role, error) {
	switch enum.Role(s) {
	case enum.RoleAdmin, enum.RoleEmployee, enum.RoleKitchen, enum.RoleOwner:
		return enum.Role(s), nil
	}
	return "", ErrUnknownRole
}

// RouteFor maps a role to the top-level view it may reach. Kitchen staff
// get the ticket view; every other known role lands on billing.
func RouteFor(role enum.Role) (enum.View, error) {
	switch role {
	case enum.RoleKitchen:
		return enum.ViewKitchen, nil
	case enum.RoleAdmin, enum.RoleEmployee, enum.RoleOwner:
		return enum.ViewBilling, nil
	}
	return "", ErrUnknownRole
}
