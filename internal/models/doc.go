// Package models defines the core domain models for splitbook.
//
// # Entities
//
//   - User: a registered account holder
//   - Account: a ledger account owned by one user
//   - Category: a user-scoped transaction category
//   - Transaction: a posted ledger entry against an account
//   - TransactionRequest: one user asking another to approve a transaction
//   - SharedExpense / ExpenseParticipant: an expense split into shares,
//     settled per participant
//   - RecurringTemplate: a template applied once per calendar month
//
// # Conventions
//
// Monetary amounts are shopspring decimals with a scale of at most two;
// they are rendered as fixed two-decimal strings on the wire. Timestamps
// are Unix seconds internally. Transaction dates are "YYYY-MM-DD" strings.
// Relationships use ID strings instead of pointers to avoid circular
// references.
package models
