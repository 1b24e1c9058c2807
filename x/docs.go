/*
Package x contains the extensions of the lockdrop application and the
authentication helpers they share.

Extensions implement common functionality (Handler, Decorator, etc.) and are
combined together in the app package to construct the application. Each
handler receives an Authenticator in its constructor, so the way a signer is
proven (see x/sigs) stays independent of the business logic.
*/
package x
