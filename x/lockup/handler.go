package lockup

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/orm"
	"github.com/iov-one/lockdrop/x"
	"github.com/iov-one/lockdrop/x/cash"
)

const (
	createRegistrarCost int64 = 100
	depositCost         int64 = 50
	withdrawCost        int64 = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r lockdrop.Registry, auth x.Authenticator, bank cash.Controller) {
	registrars := NewRegistrarBucket()
	voters := NewVoterBucket()
	r.Handle(&CreateRegistrarMsg{}, CreateRegistrarHandler{auth: auth, registrars: registrars})
	r.Handle(&DepositMsg{}, DepositHandler{auth: auth, registrars: registrars, voters: voters, bank: bank})
	r.Handle(&WithdrawMsg{}, WithdrawHandler{auth: auth, registrars: registrars, voters: voters, bank: bank})
}

// RegisterQuery exposes registrars and voters.
func RegisterQuery(qr lockdrop.QueryRouter) {
	NewRegistrarBucket().Register("registrars", qr)
	NewVoterBucket().Register("voters", qr)
}

// CreateRegistrarHandler creates a new registrar. The admin must sign.
type CreateRegistrarHandler struct {
	auth       x.Authenticator
	registrars orm.ModelBucket
}

var _ lockdrop.Handler = CreateRegistrarHandler{}

func (h CreateRegistrarHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: createRegistrarCost}, nil
}

func (h CreateRegistrarHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	registrar := Registrar{
		Metadata: &lockdrop.Metadata{Schema: 1},
		Admin:    msg.Admin,
		Ticker:   msg.Ticker,
	}
	key, err := h.registrars.Put(db, nil, &registrar)
	if err != nil {
		return nil, errors.Wrap(err, "cannot store registrar")
	}
	return &lockdrop.DeliverResult{Data: key}, nil
}

func (h CreateRegistrarHandler) validate(ctx lockdrop.Context, tx lockdrop.Tx) (*CreateRegistrarMsg, error) {
	var msg CreateRegistrarMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	return &msg, nil
}

// DepositHandler locks tokens in the registrar vault.
type DepositHandler struct {
	auth       x.Authenticator
	registrars orm.ModelBucket
	voters     orm.ModelBucket
	bank       cash.Controller
}

var _ lockdrop.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: depositCost}, nil
}

func (h DepositHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, voter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	vault := VaultCondition(msg.Registrar).Address()
	if err := h.bank.MoveCoins(db, msg.Authority, vault, *msg.Amount); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	voter.Deposits = append(voter.Deposits, msg.Deposit())
	key := VoterID(msg.Registrar, msg.Authority)
	if _, err := h.voters.Put(db, key, voter); err != nil {
		return nil, errors.Wrap(err, "cannot store voter")
	}
	return &lockdrop.DeliverResult{Data: key}, nil
}

func (h DepositHandler) validate(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*DepositMsg, *Voter, error) {
	var msg DepositMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Authority) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "authority signature required")
	}
	var registrar Registrar
	if err := h.registrars.One(db, msg.Registrar, &registrar); err != nil {
		return nil, nil, errors.Wrap(err, "registrar")
	}
	if msg.Amount.Ticker != registrar.Ticker {
		return nil, nil, errors.Wrapf(errors.ErrCurrencyMismatch, "registrar accepts %s only", registrar.Ticker)
	}
	if msg.Kind == Cliff && lockdrop.IsExpired(ctx, msg.EndTs) {
		return nil, nil, errors.Wrap(errors.ErrExpired, "cliff end in the past")
	}

	voter, err := loadVoter(db, h.voters, msg.Registrar, msg.Authority)
	if err != nil {
		return nil, nil, err
	}
	if len(voter.Deposits) >= maxDeposits {
		return nil, nil, errors.Wrapf(errors.ErrInvalidState, "voter holds %d deposits already", maxDeposits)
	}
	return &msg, voter, nil
}

// WithdrawHandler returns unlocked tokens from the registrar vault.
type WithdrawHandler struct {
	auth       x.Authenticator
	registrars orm.ModelBucket
	voters     orm.ModelBucket
	bank       cash.Controller
}

var _ lockdrop.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h WithdrawHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, voter, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	vault := VaultCondition(msg.Registrar).Address()
	if err := h.bank.MoveCoins(db, vault, msg.Authority, *msg.Amount); err != nil {
		return nil, errors.Wrap(err, "withdraw")
	}
	if _, err := h.voters.Put(db, VoterID(msg.Registrar, msg.Authority), voter); err != nil {
		return nil, errors.Wrap(err, "cannot store voter")
	}
	return &lockdrop.DeliverResult{}, nil
}

// validate returns the voter with the withdrawn amount already consumed.
func (h WithdrawHandler) validate(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*WithdrawMsg, *Voter, error) {
	var msg WithdrawMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Authority) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "authority signature required")
	}
	if err := h.registrars.Has(db, msg.Registrar); err != nil {
		return nil, nil, errors.Wrap(err, "registrar")
	}
	var voter Voter
	if err := h.voters.One(db, VoterID(msg.Registrar, msg.Authority), &voter); err != nil {
		return nil, nil, errors.Wrap(err, "voter")
	}
	now, err := lockdrop.BlockTime(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "block time")
	}
	if err := voter.withdraw(lockdrop.AsUnixTime(now), *msg.Amount); err != nil {
		return nil, nil, err
	}
	return &msg, &voter, nil
}

// loadVoter returns the stored voter or a new one without deposits.
func loadVoter(db lockdrop.ReadOnlyKVStore, voters orm.ModelBucket, registrarID []byte, authority lockdrop.Address) (*Voter, error) {
	var voter Voter
	switch err := voters.One(db, VoterID(registrarID, authority), &voter); {
	case err == nil:
		return &voter, nil
	case errors.ErrNotFound.Is(err):
		return &Voter{
			Metadata:  &lockdrop.Metadata{Schema: 1},
			Registrar: registrarID,
			Authority: authority,
		}, nil
	default:
		return nil, errors.Wrap(err, "voter")
	}
}
