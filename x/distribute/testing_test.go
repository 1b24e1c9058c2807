package distribute

import (
	"testing"
	"time"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/app"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/weavetest/assert"
	"github.com/iov-one/lockdrop/x/cash"
)

const ticker = "LDT"

// mockOracle serves fixed weights. Time arguments are only checked for
// ordering.
type mockOracle struct {
	registrars map[string]bool
	voters     map[string]*mockVoter
	// err is returned by every call when set.
	err error
}

type mockVoter struct {
	registrar []byte
	authority lockdrop.Address
	weight    uint64
}

var _ WeightOracle = (*mockOracle)(nil)

func newMockOracle(registrars ...[]byte) *mockOracle {
	o := &mockOracle{
		registrars: make(map[string]bool),
		voters:     make(map[string]*mockVoter),
	}
	for _, r := range registrars {
		o.registrars[string(r)] = true
	}
	return o
}

func (o *mockOracle) setVoter(registrar, voter []byte, authority lockdrop.Address, weight uint64) {
	o.voters[string(voter)] = &mockVoter{registrar: registrar, authority: authority, weight: weight}
}

func (o *mockOracle) HasRegistrar(db lockdrop.ReadOnlyKVStore, registrar []byte) error {
	if o.err != nil {
		return o.err
	}
	if !o.registrars[string(registrar)] {
		return errors.Wrap(errors.ErrNotFound, "registrar")
	}
	return nil
}

func (o *mockOracle) VoterAuthority(db lockdrop.ReadOnlyKVStore, registrar, voter []byte) (lockdrop.Address, error) {
	v, err := o.voter(registrar, voter)
	if err != nil {
		return nil, err
	}
	return v.authority, nil
}

func (o *mockOracle) GuaranteedLockedWeight(db lockdrop.ReadOnlyKVStore, registrar, voter []byte, now, target lockdrop.UnixTime) (uint64, error) {
	if target < now {
		return 0, errors.Wrap(errors.ErrInvalidInput, "target before now")
	}
	v, err := o.voter(registrar, voter)
	if err != nil {
		return 0, err
	}
	return v.weight, nil
}

func (o *mockOracle) voter(registrar, voter []byte) (*mockVoter, error) {
	if o.err != nil {
		return nil, o.err
	}
	v, ok := o.voters[string(voter)]
	if !ok || string(v.registrar) != string(registrar) {
		return nil, errors.Wrap(errors.ErrNotFound, "voter")
	}
	return v, nil
}

// env is a single chain with the distribute routes registered. Signers
// are passed per transaction.
type env struct {
	t         testing.TB
	chain     *weavetest.Chain
	db        store.CacheableKVStore
	bank      cash.BaseController
	auth      *weavetest.CtxAuth
	oracle    *mockOracle
	router    *app.Router
	registrar []byte
	admin     lockdrop.Condition
}

func newEnv(t testing.TB) *env {
	registrar := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	e := &env{
		t:         t,
		chain:     weavetest.NewChain(time.Unix(1000, 0)),
		db:        store.MemStore(),
		bank:      cash.NewController(cash.NewWalletBucket()),
		auth:      &weavetest.CtxAuth{Key: "auth"},
		oracle:    newMockOracle(registrar),
		router:    app.NewRouter(),
		registrar: registrar,
		admin:     weavetest.NewCondition(),
	}
	RegisterRoutes(e.router, e.auth, e.oracle, e.bank)
	return e
}

func (e *env) check(msg lockdrop.Msg, signers ...lockdrop.Condition) error {
	ctx := e.auth.SetConditions(e.chain.Context(), signers...)
	_, err := e.router.Check(ctx, e.db, &weavetest.Tx{Msg: msg})
	return err
}

func (e *env) deliver(msg lockdrop.Msg, signers ...lockdrop.Condition) (*lockdrop.DeliverResult, error) {
	ctx := e.auth.SetConditions(e.chain.Context(), signers...)
	return e.router.Deliver(ctx, e.db, &weavetest.Tx{Msg: msg})
}

// createDistribution creates a distribution whose registration ends, and
// weight is measured, after the given delay.
func (e *env) createDistribution(index uint64, delay int64) []byte {
	e.t.Helper()
	res, err := e.deliver(&CreateDistributionMsg{
		Metadata:          &lockdrop.Metadata{Schema: 1},
		Admin:             e.admin.Address(),
		Registrar:         e.registrar,
		Ticker:            ticker,
		Index:             index,
		RegistrationEndTs: e.chain.Now().AddSeconds(delay),
		WeightTs:          e.chain.Now().AddSeconds(delay),
	}, e.admin)
	assert.Nil(e.t, err)
	return res.Data
}

// newVoter declares a voter with given weight in the oracle.
func (e *env) newVoter(weight uint64) ([]byte, lockdrop.Condition) {
	authority := weavetest.NewCondition()
	voter := append(append([]byte(nil), e.registrar...), authority.Address()...)
	e.oracle.setVoter(e.registrar, voter, authority.Address(), weight)
	return voter, authority
}

func (e *env) register(distributionID, voter []byte, authority lockdrop.Condition) error {
	_, err := e.deliver(&CreateParticipantMsg{
		Metadata:       &lockdrop.Metadata{Schema: 1},
		DistributionID: distributionID,
		VoterID:        voter,
		Payer:          authority.Address(),
	}, authority)
	return err
}

func (e *env) update(distributionID, voter []byte) error {
	_, err := e.deliver(&UpdateParticipantMsg{
		Metadata:       &lockdrop.Metadata{Schema: 1},
		DistributionID: distributionID,
		VoterID:        voter,
	})
	return err
}

func (e *env) claim(distributionID, voter []byte, authority lockdrop.Condition, dest lockdrop.Address) error {
	_, err := e.deliver(&ClaimMsg{
		Metadata:      &lockdrop.Metadata{Schema: 1},
		ParticipantID: ParticipantID(distributionID, voter),
		Destination:   dest,
	}, authority)
	return err
}

func (e *env) distribution(id []byte) *Distribution {
	e.t.Helper()
	var d Distribution
	assert.Nil(e.t, NewDistributionBucket().One(e.db, id, &d))
	return &d
}

func (e *env) balance(addr lockdrop.Address) coin.Coin {
	e.t.Helper()
	coins, err := e.bank.Balance(e.db, addr)
	assert.Nil(e.t, err)
	return coins.Get(ticker)
}

func (e *env) fund(addr lockdrop.Address, whole int64) {
	e.t.Helper()
	assert.Nil(e.t, e.bank.IssueCoins(e.db, addr, coin.NewCoin(whole, 0, ticker)))
}
