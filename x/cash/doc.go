/*
Package cash defines a simple implementation of sending coins
between wallets.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. Simple and safe.

The Controller is the custody primitive other extensions build on: the
lockup registrar keeps deposits in a vault wallet and each distribution
pays its participants out of its own vault.
*/
package cash
