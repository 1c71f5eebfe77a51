package middleware

import (
	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/response"
)

// Action is a named capability checked before dispatching into a service.
// Keeping the role table here means route handlers and services carry no
// inline role checks.
type Action string

const (
	ActionManageBooks   Action = "books:manage"
	ActionIssueLoan     Action = "loans:issue"
	ActionReturnLoan    Action = "loans:return"
	ActionRenewLoan     Action = "loans:renew"
	ActionViewAllLoans  Action = "loans:view_all"
	ActionManageUsers   Action = "users:manage"
	ActionViewDashboard Action = "dashboard:view"
)

var rolePolicies = map[string]map[Action]bool{
	"admin": {
		ActionManageBooks:   true,
		ActionIssueLoan:     true,
		ActionReturnLoan:    true,
		ActionRenewLoan:     true,
		ActionViewAllLoans:  true,
		ActionManageUsers:   true,
		ActionViewDashboard: true,
	},
	"member": {
		// Members may renew their own loans; ownership is checked by the
		// transaction service, which knows the loan.
		ActionRenewLoan: true,
	},
}

// Can reports whether role is allowed to perform action.
func Can(role string, action Action) bool {
	perms, ok := rolePolicies[role]
	if !ok {
		return false
	}
	return perms[action]
}

// RequirePolicy rejects the request with 403 unless the authenticated
// role is allowed to perform action. Must run after AuthMiddleware.
func RequirePolicy(action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		if !Can(role, action) {
			response.Forbidden(c, "access denied: insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
