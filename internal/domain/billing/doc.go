// Package billing holds the money side of the agency: invoices with their
// line items and payments, and expenses. Amounts use decimal arithmetic;
// totals are derived from the items and never stored independently.
package billing
