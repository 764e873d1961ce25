/*
Package validation provides shared validation utilities for domain entities.

This package consolidates common validation patterns that would otherwise be
duplicated across domain packages, ensuring consistency and reducing code
duplication.

# Validation Result

The Result type tracks validation outcomes including errors and warnings:

	result := validation.NewResult()
	if err := validateSomething(value); err != nil {
		result.AddError(err)
	}
	if !result.Valid {
		return nil, result
	}

Result supports warnings for soft validation issues that don't prevent operation:

	result.AddWarning("Value is unusually high")

# Usage in Domain Packages

Domain packages should create type aliases for backward compatibility:

	type ValidationResult = validation.Result

	func NewValidationResult() *ValidationResult {
		return validation.NewResult()
	}
*/
package validation
