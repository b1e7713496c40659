package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/koboledger/kobo/internal/core/domain"
)

// PrincipalClaims are the JWT claims carried by every bearer token. They
// embed the full principal so repositories never need a second lookup to
// resolve tenant scope inputs.
type PrincipalClaims struct {
	BranchID   string      `json:"branchID"`
	CompanyID  string      `json:"companyID"`
	HeadOffice bool        `json:"headOffice"`
	SuperAdmin bool        `json:"superAdmin"`
	Role       domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts the claims back into a domain principal.
func (c PrincipalClaims) Principal() domain.Principal {
	return domain.Principal{
		UserID:     c.Subject,
		BranchID:   c.BranchID,
		CompanyID:  c.CompanyID,
		HeadOffice: c.HeadOffice,
		SuperAdmin: c.SuperAdmin,
		Role:       c.Role,
	}
}

// AuthMiddleware validates the bearer token and stores the principal in the
// request context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be Bearer token"})
			return
		}

		claims := &PrincipalClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		principal := claims.Principal()
		c.Set(string(principalKey), principal)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), principalKey, principal))
		c.Next()
	}
}
