package models

// Role is a user's access level
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Permission names a single capability granted to a role
type Permission string

const (
	PermView           Permission = "view"
	PermEdit           Permission = "edit"
	PermEditLimited    Permission = "edit_limited"
	PermManageFleet    Permission = "manage_fleet"
	PermOptimizeRoutes Permission = "optimize_routes"
	PermViewReports    Permission = "view_reports"
	PermExportData     Permission = "export_data"
)

// RolePermissions maps each role to its granted permission set.
// Admin is handled in Can and holds every permission implicitly.
var RolePermissions = map[Role][]Permission{
	RoleManager:  {PermView, PermEdit, PermManageFleet, PermOptimizeRoutes, PermViewReports, PermExportData},
	RoleOperator: {PermView, PermEditLimited, PermOptimizeRoutes},
	RoleViewer:   {PermView},
}

// Can reports whether the role grants the permission
func (r Role) Can(p Permission) bool {
	if r == RoleAdmin {
		return true
	}
	for _, granted := range RolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}

// User is an account in the in-memory session roster
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}
