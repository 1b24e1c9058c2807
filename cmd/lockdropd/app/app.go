/*
Package lockdropd links together all the various components
to construct the lockdrop node application.
*/
package lockdropd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/app"
	"github.com/iov-one/lockdrop/orm"
	"github.com/iov-one/lockdrop/store/iavl"
	"github.com/iov-one/lockdrop/x"
	"github.com/iov-one/lockdrop/x/cash"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/lockup"
	"github.com/iov-one/lockdrop/x/sigs"
	"github.com/iov-one/lockdrop/x/utils"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery
func Chain(metrics *utils.Metrics) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching to the cash, lockup and
// distribute handlers.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	bank := cash.NewController(cash.NewWalletBucket())
	cash.RegisterRoutes(r, authFn, bank)
	lockup.RegisterRoutes(r, authFn, bank)
	distribute.RegisterRoutes(r, authFn, lockup.NewOracle(), bank)
	return r
}

// QueryRouter returns a default query router, allowing access to "/",
// "/wallets", "/auth", "/registrars", "/voters", "/distributions",
// "/participants" and "/distributions/info".
func QueryRouter(clock clockwork.Clock) lockdrop.QueryRouter {
	r := lockdrop.NewQueryRouter()
	r.RegisterAll(
		orm.RegisterQuery,
		cash.RegisterQuery,
		sigs.RegisterQuery,
		lockup.RegisterQuery,
		distribute.RegisterQuery,
	)
	distribute.RegisterInfoQuery(r, clock, lockup.NewOracle(), cash.NewController(cash.NewWalletBucket()))
	return r
}

// Initializers loads the genesis sections of all extensions. Registrars
// are created before the distributions referencing them.
func Initializers() lockdrop.Initializer {
	return app.ChainInitializers(
		cash.Initializer{},
		lockup.Initializer{},
		distribute.Initializer{Oracle: lockup.NewOracle()},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(reg prometheus.Registerer) (lockdrop.Handler, error) {
	metrics, err := utils.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	authFn := Authenticator()
	return Chain(metrics).WithHandler(Router(authFn)), nil
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h lockdrop.Handler, tx lockdrop.TxDecoder, clock clockwork.Clock, dbPath string, debug bool) (app.BaseApp, error) {
	ctx := context.Background()
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter(clock), ctx).
		WithDebug(debug).
		WithInit(Initializers())
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (lockdrop.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database name: %s", path)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name)
}
