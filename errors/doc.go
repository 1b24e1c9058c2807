/*
Package errors implements the error handling used by lockdrop.

Every error returned to a client must wrap one of the registered root errors.
The root error carries an ABCI code so that clients can tell error kinds
apart without parsing messages. Common root errors are declared here,
extensions register their own with Register(code, description).

Wrap and Field attach a stacktrace at the innermost wrap. Use

	%s  for the error message
	%+v for the message followed by the stacktrace of the creation point
*/
package errors
