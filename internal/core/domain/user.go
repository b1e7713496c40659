package domain

// User is a branch user record from the vendor database. Administration of
// users and roles is external; the core only reads them to authenticate and
// to resolve a principal.
type User struct {
	UserID       string `json:"userID"`
	BranchID     string `json:"branchID"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}
