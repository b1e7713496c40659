package domain

import "time"

// Company is a tenant group owning one or more branches. Companies live in
// the vendor database and are administered by vendor admins only.
type Company struct {
	CompanyID  string    `json:"companyID"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	RegDate    time.Time `json:"regDate"`
	ExpireDate time.Time `json:"expireDate"`
	// Float bindings used as defaults for merchant float accounts.
	FloatGLNo string `json:"floatGLNo"`
	FloatAcNo string `json:"floatAcNo"`
	AuditFields
}
