// Package validator provides rule-based input validation.
//
// Rules are composed with Apply, which collects all failures into a single
// ValidationErrors value so callers can report every problem at once:
//
//	err := validator.Apply(
//		validator.Required("email", email),
//		validator.ValidEmail("email", email),
//	)
package validator
