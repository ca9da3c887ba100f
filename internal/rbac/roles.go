package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleConsumer   = "consumer"
	RoleMerchant   = "merchant"
	RoleAdmin      = "admin"
	RoleAmbassador = "ambassador" // city partner role, opt-in per route
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsPartnerRole(role string) bool { return role == RoleAmbassador }
