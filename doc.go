/*
Package lockdrop defines the common interfaces shared by all extensions of the
lockdrop application, together with the few simple types (addresses,
conditions, time) that are cheaper to implement directly than to hide behind
an interface.

A transaction travels as a Tx through the app, decorators and handlers. The
current block information is carried by a context.Context. Each piece of
information that is put into the context has a pair of helpers:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was set before, so that lower level code cannot
overwrite what the application declared for the block (height, header, chain).

State is kept in a KVStore. Every transaction is executed against a cache
wrap of the committed store and its writes are either all persisted or all
discarded.
*/
package lockdrop
