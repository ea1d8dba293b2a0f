package enum

// Role is the closed set of staff roles. Parsing and the deny policy for
// unknown roles live in the session package.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleKitchen  Role = "KITCHEN"
	RoleOwner    Role = "OWNER"
)

// View is the top-level screen a role is routed to after login.
type View string

const (
	ViewKitchen View = "KITCHEN_VIEW"
	ViewBilling View = "BILLING_VIEW"
)

// Locales for menu item display names.
const (
	LocaleEnglish = "en"
	LocaleMarathi = "mr"
)
