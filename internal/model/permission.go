package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionCatalogRead allows browsing courses and offerings.
	PermissionCatalogRead Permission = "catalog:read"

	// PermissionCatalogWrite allows creating and editing courses, prerequisites and offerings.
	PermissionCatalogWrite Permission = "catalog:write"

	// PermissionRegistrationSelf allows a student to register for and drop offerings.
	PermissionRegistrationSelf Permission = "registration:self"

	// PermissionEnrollmentsManage allows administratively dropping any enrollment.
	PermissionEnrollmentsManage Permission = "enrollments:manage"

	// PermissionRosterRead allows viewing the class list of taught offerings.
	PermissionRosterRead Permission = "roster:read"

	// PermissionGradesWrite allows recording final grades.
	PermissionGradesWrite Permission = "grades:write"

	// PermissionAssignmentsWrite allows creating, updating and deleting assignments.
	PermissionAssignmentsWrite Permission = "assignments:write"

	// PermissionAnnouncementsWrite allows posting announcements.
	PermissionAnnouncementsWrite Permission = "announcements:write"

	// PermissionUsersRead allows viewing user accounts.
	PermissionUsersRead Permission = "users:read"

	// PermissionUsersWrite allows creating, updating and deleting user accounts.
	PermissionUsersWrite Permission = "users:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionCatalogRead,
	PermissionCatalogWrite,
	PermissionRegistrationSelf,
	PermissionEnrollmentsManage,
	PermissionRosterRead,
	PermissionGradesWrite,
	PermissionAssignmentsWrite,
	PermissionAnnouncementsWrite,
	PermissionUsersRead,
	PermissionUsersWrite,
}

// RolePermissions is the fixed grant table for each role.
var RolePermissions = map[Role][]Permission{
	RoleStudent: {
		PermissionCatalogRead,
		PermissionRegistrationSelf,
	},
	RoleProfessor: {
		PermissionCatalogRead,
		PermissionRosterRead,
		PermissionGradesWrite,
		PermissionAssignmentsWrite,
		PermissionAnnouncementsWrite,
	},
	RoleAdmin: AllPermissions,
}

// Can reports whether the role has been granted p.
func (r Role) Can(p Permission) bool {
	for _, granted := range RolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}
