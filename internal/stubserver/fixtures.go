package stubserver

import "github.com/sofrahq/sofra-admin-session/internal/permissions"

// User is a fixture account the stub accepts credentials for.
type User struct {
	ID          string              `yaml:"id"`
	Email       string              `yaml:"email"`
	Password    string              `yaml:"password"`
	DisplayName string              `yaml:"display_name"`
	Role        string              `yaml:"role"`
	IsActive    bool                `yaml:"is_active"`
	Permissions []permissions.Grant `yaml:"permissions"`
}

// BuiltinUsers returns the default fixture accounts: a partner with the
// full admin grant set and a read-only staff account.
func BuiltinUsers() []User {
	return []User{
		{
			ID:          "u-1001",
			Email:       "partner@sofra.example",
			Password:    "partner",
			DisplayName: "Dana Partner",
			Role:        "partner",
			IsActive:    true,
			Permissions: []permissions.Grant{
				{Key: "admin.kitchen.view", Name: "View kitchen", Group: "kitchen"},
				{Key: "admin.kitchen.edit", Name: "Edit kitchen", Group: "kitchen"},
				{Key: "admin.menu.view", Name: "View menu", Group: "menu"},
				{Key: "admin.menu.edit", Name: "Edit menu", Group: "menu"},
				{Key: "admin.orders.view", Name: "View orders", Group: "orders"},
				{Key: "admin.orders.manage", Name: "Manage orders", Group: "orders"},
				{Key: "admin.staff.manage", Name: "Manage staff", Group: "staff"},
				{Key: "admin.reports.view", Name: "View reports", Group: "reports"},
				{Key: "admin.settings.manage", Name: "Manage settings", Group: "settings"},
			},
		},
		{
			ID:          "u-1002",
			Email:       "staff@sofra.example",
			Password:    "staff",
			DisplayName: "Sam Staff",
			Role:        "staff",
			IsActive:    true,
			Permissions: []permissions.Grant{
				{Key: "admin.kitchen.view", Name: "View kitchen", Group: "kitchen"},
				{Key: "admin.orders.view", Name: "View orders", Group: "orders"},
			},
		},
	}
}
