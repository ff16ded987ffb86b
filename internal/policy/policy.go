// Package policy is the pure decision function mapping (role, order status)
// to the actions the console may offer and issue. It gates affordances for UX
// correctness only; the backend is the real enforcement point, and every
// request is re-checked server-side regardless of what this package says.
package policy

import (
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/auth"
	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

type Action string

const (
	ActionAddToCart     Action = "addToCart"
	ActionCheckout      Action = "checkout"
	ActionCancelOrder   Action = "cancelOrder"
	ActionCreateProduct Action = "createProduct"
	ActionUpdateProduct Action = "updateProduct"
	ActionDeleteProduct Action = "deleteProduct"
	ActionGlobalStats   Action = "globalStats"
	ActionOwnStats      Action = "ownStats"
)

type Actions []Action

func (a Actions) Contains(act Action) bool {
	for _, v := range a {
		if v == act {
			return true
		}
	}
	return false
}

// Allowed returns the action set for a caller with the given role, evaluated
// against the status of the order in play. Pass an empty status when no order
// is involved. No I/O, no ambient state.
func Allowed(role auth.Role, status domain.OrderStatus) Actions {
	if role == auth.RoleAdmin {
		// Admins manage the catalog and watch the dashboard; they neither
		// shop nor cancel customer orders.
		return Actions{ActionCreateProduct, ActionUpdateProduct, ActionDeleteProduct, ActionGlobalStats}
	}
	acts := Actions{ActionAddToCart, ActionCheckout, ActionOwnStats}
	if status == domain.OrderStatusCreated {
		acts = append(acts, ActionCancelOrder)
	}
	return acts
}

// Can reports whether a single action is allowed. Callers consult this both
// before rendering an affordance and before issuing the request behind it.
func Can(role auth.Role, act Action, status domain.OrderStatus) bool {
	return Allowed(role, status).Contains(act)
}
