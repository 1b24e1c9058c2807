// Package utils provides the decorators every transaction of the lockdrop
// application passes through: panic recovery, logging, metrics, action tags
// and the savepoint that makes each transaction atomic.
package utils
