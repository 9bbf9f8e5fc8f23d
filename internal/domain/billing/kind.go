package billing

import "strings"

// DocumentKind identifies the type of a financial document
type DocumentKind string

const (
	KindSalesOrder    DocumentKind = "SALES_ORDER"
	KindInvoice       DocumentKind = "INVOICE"
	KindPurchaseOrder DocumentKind = "PURCHASE_ORDER"
	KindVendorBill    DocumentKind = "VENDOR_BILL"
	KindExpense       DocumentKind = "EXPENSE"
)

// LineDocumentKinds are the kinds that carry line items
var LineDocumentKinds = []DocumentKind{KindSalesOrder, KindInvoice, KindPurchaseOrder, KindVendorBill}

// AllKinds returns every kind that contributes to project financials
func AllKinds() []DocumentKind {
	return []DocumentKind{KindSalesOrder, KindInvoice, KindPurchaseOrder, KindVendorBill, KindExpense}
}

// IsValid checks if the kind is known
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindSalesOrder, KindInvoice, KindPurchaseOrder, KindVendorBill, KindExpense:
		return true
	}
	return false
}

// HasLines reports whether documents of this kind own line items
func (k DocumentKind) HasLines() bool {
	return k.IsValid() && k != KindExpense
}

// NumberPrefix returns the prefix used for document numbers of this kind
func (k DocumentKind) NumberPrefix() string {
	switch k {
	case KindSalesOrder:
		return "SO"
	case KindInvoice:
		return "INV"
	case KindPurchaseOrder:
		return "PO"
	case KindVendorBill:
		return "BILL"
	case KindExpense:
		return "EXP"
	}
	return ""
}

// IsCustomerFacing reports whether the counterparty is a customer (as opposed to a vendor)
func (k DocumentKind) IsCustomerFacing() bool {
	return k == KindSalesOrder || k == KindInvoice
}

// HasDueDate reports whether the kind is a payable/receivable with a due date
func (k DocumentKind) HasDueDate() bool {
	return k == KindInvoice || k == KindVendorBill
}

// String returns the string representation of the kind
func (k DocumentKind) String() string {
	return string(k)
}

// Label returns a human readable name, e.g. "Vendor bill"
func (k DocumentKind) Label() string {
	s := strings.ToLower(strings.ReplaceAll(string(k), "_", " "))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseDocumentKind parses a kind name, accepting lower case and dashes
func ParseDocumentKind(s string) (DocumentKind, bool) {
	k := DocumentKind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	return k, k.IsValid()
}
