/*
Package lockup implements a stake registrar. Voters deposit tokens into a
registrar vault and commit to keep them locked, either until a fixed date
(cliff) or for a rolling period (constant). The registrar reports how much
of a voter stake is guaranteed to stay locked at a future moment, which is
the weight other extensions distribute rewards by.
*/
package lockup
