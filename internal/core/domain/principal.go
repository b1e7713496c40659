package domain

// Role describes what a branch user may do.
type Role string

const (
	// RoleOfficer submits transactions for approval but cannot post directly.
	RoleOfficer Role = "OFFICER"
	// RoleTeller posts cash transactions within an open session.
	RoleTeller Role = "TELLER"
	// RoleManager approves, reverses and controls the branch session.
	RoleManager Role = "MANAGER"
	// RoleVendorAdmin administers companies and branches across all tenants.
	RoleVendorAdmin Role = "VENDOR_ADMIN"
)

// AtLeast reports whether the role grants at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	rank := map[Role]int{RoleOfficer: 1, RoleTeller: 2, RoleManager: 3, RoleVendorAdmin: 4}
	return rank[r] >= rank[required]
}

// Principal identifies an authenticated user and their home tenant.
type Principal struct {
	UserID     string `json:"userID"`
	BranchID   string `json:"branchID"`
	CompanyID  string `json:"companyID"`
	HeadOffice bool   `json:"headOffice"`
	SuperAdmin bool   `json:"superAdmin"`
	Role       Role   `json:"role"`
}

// TenantScope is the explicit set of branch IDs a principal may read and
// write. All is set only for super admins.
type TenantScope struct {
	BranchIDs []string
	All       bool
}

// Contains reports whether branchID is within the scope.
func (s TenantScope) Contains(branchID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// ScopeFor builds the single-branch scope for an ordinary user.
func ScopeFor(branchID string) TenantScope {
	return TenantScope{BranchIDs: []string{branchID}}
}
