// Package errors provides structured, actionable error messages for the
// recalc CLI and inspection server.
//
// # Error Categories
//
// Errors are organized into categories:
//   - structure: Rejected graph mutations (circular dependency, disposed variable)
//   - document: Malformed expression documents and unknown functions
//   - lookup: Unknown variables and scopes
//   - config: Invalid or unreadable configuration
//   - cli: Command failures (server startup, tracing setup)
//
// # Error Codes
//
// Each error has a unique code (e.g., "E001") that maps to a short message
// and a detailed explanation.
//
// # Usage
//
//	err := errors.Classify(v.SetContent(ctx, content))
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E001: Circular dependency
//	//
//	//   cycle: B1 -> A1 -> B1
//	//
//	//   The new content would make a variable read its own value...
//	//
//	//   Hint: Remove one of the references in the cycle.
package errors
