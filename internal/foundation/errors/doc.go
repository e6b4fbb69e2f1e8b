// Package errors provides the classified error primitives used across mdxsite.
//
// Domain packages (mdx, page, site, render) return typed errors; the build service
// wraps them in a ClassifiedError so the CLI can pick an exit code and print a message
// naming the offending document. errors.As still reaches the typed cause.
//
// Key features:
//   - ErrorCategory: which stage of the build failed (config, parse, metadata, render, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.WrapError(parseErr, errors.CategoryParse, "parse document").
//		WithContext("document", path).
//		Build()
package errors
