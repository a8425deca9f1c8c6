package orders

import "github.com/crumbhq/crumb-backend/pkg/enums"

// IsValidTransition reports whether an order may move from current to next.
// Unknown statuses on either side are never valid.
func IsValidTransition(current, next string) bool {
	from, err := enums.ParseOrderStatus(current)
	if err != nil {
		return false
	}
	to, err := enums.ParseOrderStatus(next)
	if err != nil {
		return false
	}
	return from.CanTransitionTo(to)
}
