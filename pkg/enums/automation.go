package enums

import "fmt"

// AutomationAction is the bulk operation requested by a natural-language command.
type AutomationAction string

const (
	AutomationActionEmptyStock  AutomationAction = "empty_stock"
	AutomationActionUpdateStock AutomationAction = "update_stock"
	AutomationActionDelete      AutomationAction = "delete"
	AutomationActionAddProduct  AutomationAction = "add_product"
	AutomationActionEditProduct AutomationAction = "edit_product"
)

var validAutomationActions = []AutomationAction{
	AutomationActionEmptyStock,
	AutomationActionUpdateStock,
	AutomationActionDelete,
	AutomationActionAddProduct,
	AutomationActionEditProduct,
}

// String implements fmt.Stringer.
func (a AutomationAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AutomationAction.
func (a AutomationAction) IsValid() bool {
	for _, candidate := range validAutomationActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAutomationAction converts raw input into an AutomationAction.
func ParseAutomationAction(value string) (AutomationAction, error) {
	for _, candidate := range validAutomationActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid automation action %q", value)
}
