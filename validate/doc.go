// Package validate matches JSON values against schema trees.
//
// Validate performs a recursive descent keyed on the schema node kind,
// aggregating every violation found at each level rather than stopping at
// the first, so callers see the complete violation set in one pass:
//
//	errs := validate.Validate(node, doc, reg)
//	if len(errs) == 0 {
//		// valid
//	}
//
// Errors are data, never panics: each Error carries the failing keyword,
// a message, and JSON Pointer paths into both the instance and the schema.
// Reference resolution failures and reference cycles surface the same way,
// as UnresolvedReference and CyclicReference errors.
//
// Validation is pure and synchronous; the schema tree and registry are
// never mutated, so one schema/registry pair serves concurrent validations
// without synchronization.
package validate
