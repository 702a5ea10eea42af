/*
Package errors implements the coded errors used across the whole framework.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when necessary. Extensions register their own root
errors with a unique ABCI code using Register(code, description) - see
x/board for an example of a package owning a code block.

Each root error carries an ABCI error code that allows a client to
distinguish error types and act accordingly. Create runtime instances by
wrapping a root error with context:

	errors.Wrapf(errors.ErrInput, "unsupported format: %q", format)

Wrapping attaches a stack trace the first time an error is wrapped. Use
fmt verbs to render errors with more context:

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created

Test for an error kind with the root error Is method, which unwraps the
cause chain:

	if errors.ErrNotFound.Is(err) { ... }
*/
package errors
