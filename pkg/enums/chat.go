package enums

// ChatIntent is the classified purpose of an assistant message.
type ChatIntent string

const (
	ChatIntentAddProduct         ChatIntent = "add_product"
	ChatIntentEditProduct        ChatIntent = "edit_product"
	ChatIntentDeleteProduct      ChatIntent = "delete_product"
	ChatIntentAutomation         ChatIntent = "automation"
	ChatIntentRiskReport         ChatIntent = "risk_report"
	ChatIntentTransactionSummary ChatIntent = "transaction_summary"
	ChatIntentQuery              ChatIntent = "query"
	ChatIntentHelp               ChatIntent = "help"
)

var validChatIntents = []ChatIntent{
	ChatIntentAddProduct,
	ChatIntentEditProduct,
	ChatIntentDeleteProduct,
	ChatIntentAutomation,
	ChatIntentRiskReport,
	ChatIntentTransactionSummary,
	ChatIntentQuery,
	ChatIntentHelp,
}

// String implements fmt.Stringer.
func (c ChatIntent) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChatIntent.
func (c ChatIntent) IsValid() bool {
	for _, candidate := range validChatIntents {
		if candidate == c {
			return true
		}
	}
	return false
}
