// Package billing holds the financial documents of a project: sales orders,
// invoices, purchase orders, vendor bills and expenses.
//
// Documents own their line items and derive subtotal, tax and total from them.
// Every document may reference one project; the project's revenue, cost and
// profit are recomputed from the documents that reference it whenever one of
// them changes.
package billing
