package distribute

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/gconf"
	"github.com/iov-one/lockdrop/x"
)

const (
	createDistributionCost int64 = 100
	createParticipantCost  int64 = 50
	updateParticipantCost  int64 = 20
	claimCost              int64 = 50
	setTimeOffsetCost      int64 = 10
	infoCost               int64 = 5
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r lockdrop.Registry, auth x.Authenticator, oracle WeightOracle, bank CashController) {
	distributions := NewDistributionBucket()
	participants := NewParticipantBucket()
	r.Handle(&CreateDistributionMsg{}, CreateDistributionHandler{
		auth:          auth,
		oracle:        oracle,
		distributions: distributions,
	})
	r.Handle(&CreateParticipantMsg{}, CreateParticipantHandler{
		auth:          auth,
		oracle:        oracle,
		bank:          bank,
		distributions: distributions,
		participants:  participants,
	})
	r.Handle(&UpdateParticipantMsg{}, UpdateParticipantHandler{
		oracle:        oracle,
		distributions: distributions,
		participants:  participants,
	})
	r.Handle(&ClaimMsg{}, ClaimHandler{
		auth:          auth,
		bank:          bank,
		distributions: distributions,
		participants:  participants,
	})
	r.Handle(&SetTimeOffsetMsg{}, SetTimeOffsetHandler{
		auth:          auth,
		distributions: distributions,
	})
	r.Handle(&InfoMsg{}, InfoHandler{oracle: oracle, bank: bank})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(packageName, &Configuration{}, auth))
}

// CreateDistributionHandler creates an empty distribution. The admin must
// sign.
type CreateDistributionHandler struct {
	auth          x.Authenticator
	oracle        WeightOracle
	distributions DistributionBucket
}

var _ lockdrop.Handler = CreateDistributionHandler{}

func (h CreateDistributionHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: createDistributionCost}, nil
}

func (h CreateDistributionHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	id := DistributionID(msg.Admin, msg.Index)
	d := Distribution{
		Metadata:          &lockdrop.Metadata{Schema: 1},
		Admin:             msg.Admin,
		Registrar:         msg.Registrar,
		Ticker:            msg.Ticker,
		Vault:             VaultCondition(id).Address(),
		Index:             msg.Index,
		RegistrationEndTs: msg.RegistrationEndTs,
		WeightTs:          msg.WeightTs,
	}
	d.SetTotalWeight(zeroWeight())
	if _, err := h.distributions.Put(db, id, &d); err != nil {
		return nil, errors.Wrap(err, "cannot store distribution")
	}
	lockdrop.GetLogger(ctx).Info("distribution created",
		"admin", msg.Admin, "index", msg.Index, "vault", d.Vault)
	return &lockdrop.DeliverResult{Data: id}, nil
}

func (h CreateDistributionHandler) validate(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*CreateDistributionMsg, error) {
	var msg CreateDistributionMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	if err := h.oracle.HasRegistrar(db, msg.Registrar); err != nil {
		return nil, errors.Wrap(err, "registrar")
	}
	switch err := h.distributions.Has(db, DistributionID(msg.Admin, msg.Index)); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "distribution %d of %s", msg.Index, msg.Admin)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	return &msg, nil
}

// CreateParticipantHandler registers a voter with its current guaranteed
// weight. The voter authority and the payer must sign.
type CreateParticipantHandler struct {
	auth          x.Authenticator
	oracle        WeightOracle
	bank          CashController
	distributions DistributionBucket
	participants  ParticipantBucket
}

var _ lockdrop.Handler = CreateParticipantHandler{}

func (h CreateParticipantHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: createParticipantCost}, nil
}

func (h CreateParticipantHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, d, p, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if d.ParticipantCount == math.MaxUint32 {
		return nil, errors.Wrap(errors.ErrOverflow, "participant count")
	}

	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if dep := conf.ParticipantDeposit; dep != nil && dep.IsPositive() {
		escrow := DepositCondition(msg.DistributionID).Address()
		if err := h.bank.MoveCoins(db, msg.Payer, escrow, *dep); err != nil {
			return nil, errors.Wrap(err, "participant deposit")
		}
		p.Deposit = dep.Clone()
	}

	key := ParticipantID(msg.DistributionID, msg.VoterID)
	if _, err := h.participants.Put(db, key, p); err != nil {
		return nil, errors.Wrap(err, "cannot store participant")
	}
	total := d.TotalWeight()
	total.Add(total, weightOf(p.Weight))
	d.SetTotalWeight(total)
	d.ParticipantCount++
	if _, err := h.distributions.Put(db, msg.DistributionID, d); err != nil {
		return nil, errors.Wrap(err, "cannot store distribution")
	}
	return &lockdrop.DeliverResult{Data: key}, nil
}

func (h CreateParticipantHandler) validate(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*CreateParticipantMsg, *Distribution, *Participant, error) {
	var msg CreateParticipantMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	var d Distribution
	if err := h.distributions.One(db, msg.DistributionID, &d); err != nil {
		return nil, nil, nil, errors.Wrap(err, "distribution")
	}
	weight, err := registeredWeight(ctx, db, h.oracle, &d, msg.VoterID)
	if err != nil {
		return nil, nil, nil, err
	}
	authority, err := h.oracle.VoterAuthority(db, d.Registrar, msg.VoterID)
	if err != nil {
		return nil, nil, nil, oracleFailure(ctx, msg.VoterID, err)
	}
	if !h.auth.HasAddress(ctx, authority) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "voter authority signature required")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer signature required")
	}
	switch err := h.participants.Has(db, ParticipantID(msg.DistributionID, msg.VoterID)); {
	case err == nil:
		return nil, nil, nil, errors.Wrap(errors.ErrDuplicate, "voter already registered")
	case !errors.ErrNotFound.Is(err):
		return nil, nil, nil, err
	}

	p := Participant{
		Metadata:       &lockdrop.Metadata{Schema: 1},
		Distribution:   msg.DistributionID,
		Voter:          msg.VoterID,
		VoterAuthority: authority,
		Payer:          msg.Payer,
		Weight:         weight,
	}
	return &msg, &d, &p, nil
}

// UpdateParticipantHandler raises the weight of a registered participant
// to its current guaranteed weight. Anyone can send it.
type UpdateParticipantHandler struct {
	oracle        WeightOracle
	distributions DistributionBucket
	participants  ParticipantBucket
}

var _ lockdrop.Handler = UpdateParticipantHandler{}

func (h UpdateParticipantHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: updateParticipantCost}, nil
}

func (h UpdateParticipantHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, d, p, weight, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	total := d.TotalWeight()
	total.Sub(total, weightOf(p.Weight))
	total.Add(total, weightOf(weight))
	d.SetTotalWeight(total)
	p.Weight = weight

	key := ParticipantID(msg.DistributionID, msg.VoterID)
	if _, err := h.participants.Put(db, key, p); err != nil {
		return nil, errors.Wrap(err, "cannot store participant")
	}
	if _, err := h.distributions.Put(db, msg.DistributionID, d); err != nil {
		return nil, errors.Wrap(err, "cannot store distribution")
	}
	return &lockdrop.DeliverResult{Data: key}, nil
}

// validate returns the stored records together with the new weight.
func (h UpdateParticipantHandler) validate(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*UpdateParticipantMsg, *Distribution, *Participant, uint64, error) {
	var msg UpdateParticipantMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, 0, errors.Wrap(err, "load msg")
	}
	var d Distribution
	if err := h.distributions.One(db, msg.DistributionID, &d); err != nil {
		return nil, nil, nil, 0, errors.Wrap(err, "distribution")
	}
	weight, err := registeredWeight(ctx, db, h.oracle, &d, msg.VoterID)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	var p Participant
	if err := h.participants.One(db, ParticipantID(msg.DistributionID, msg.VoterID), &p); err != nil {
		return nil, nil, nil, 0, errors.Wrap(err, "participant")
	}
	if weight < p.Weight {
		return nil, nil, nil, 0, errors.Wrapf(ErrWeightDecrease, "%d is less than registered %d", weight, p.Weight)
	}
	return &msg, &d, &p, weight, nil
}

// ClaimHandler pays out the share of a participant and closes it. The
// first claim of a distribution freezes the amount being distributed.
type ClaimHandler struct {
	auth          x.Authenticator
	bank          CashController
	distributions DistributionBucket
	participants  ParticipantBucket
}

var _ lockdrop.Handler = ClaimHandler{}

func (h ClaimHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: claimCost}, nil
}

func (h ClaimHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, d, p, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if d.ClaimCount == 0 {
		balance, err := h.bank.Balance(db, d.Vault)
		if err != nil {
			return nil, errors.Wrap(err, "vault balance")
		}
		amount := balance.Get(d.Ticker)
		d.TotalAmountToDistribute = &amount
	}
	d.ClaimCount++

	share, err := d.TotalAmountToDistribute.ProRata(p.Weight, d.TotalWeight())
	if err != nil {
		return nil, errors.Wrap(err, "share")
	}
	if share.IsPositive() {
		if err := h.bank.MoveCoins(db, d.Vault, msg.Destination, share); err != nil {
			return nil, errors.Wrap(err, "payout")
		}
	}

	if err := h.participants.Delete(db, msg.ParticipantID); err != nil {
		return nil, errors.Wrap(err, "close participant")
	}
	if dep := p.Deposit; dep != nil && dep.IsPositive() {
		escrow := DepositCondition(p.Distribution).Address()
		if err := h.bank.MoveCoins(db, escrow, p.Payer, *dep); err != nil {
			return nil, errors.Wrap(err, "refund deposit")
		}
	}
	if _, err := h.distributions.Put(db, p.Distribution, d); err != nil {
		return nil, errors.Wrap(err, "cannot store distribution")
	}

	lockdrop.GetLogger(ctx).Info("participant claimed",
		"voter", p.VoterAuthority, "weight", p.Weight, "share", share.String())
	return &lockdrop.DeliverResult{Log: share.String()}, nil
}

func (h ClaimHandler) validate(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*ClaimMsg, *Distribution, *Participant, error) {
	var msg ClaimMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	distributionID, _, err := SplitParticipantID(msg.ParticipantID)
	if err != nil {
		return nil, nil, nil, err
	}
	var d Distribution
	if err := h.distributions.One(db, distributionID, &d); err != nil {
		return nil, nil, nil, errors.Wrap(err, "distribution")
	}
	now, err := Now(ctx, &d)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "block time")
	}
	if d.Phase(now) != PhaseClaim {
		return nil, nil, nil, errors.Wrapf(ErrNotInClaimPhase, "claims open at %s", d.RegistrationEndTs)
	}
	var p Participant
	if err := h.participants.One(db, msg.ParticipantID, &p); err != nil {
		return nil, nil, nil, errors.Wrap(err, "participant")
	}
	if !h.auth.HasAddress(ctx, p.VoterAuthority) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "voter authority signature required")
	}
	return &msg, &d, &p, nil
}

// SetTimeOffsetHandler shifts the clock of a distribution. It is meant for
// test networks and refuses to work unless enabled in the configuration.
type SetTimeOffsetHandler struct {
	auth          x.Authenticator
	distributions DistributionBucket
}

var _ lockdrop.Handler = SetTimeOffsetHandler{}

func (h SetTimeOffsetHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &lockdrop.CheckResult{GasAllocated: setTimeOffsetCost}, nil
}

func (h SetTimeOffsetHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	msg, d, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	d.TimeOffset = msg.TimeOffset
	if _, err := h.distributions.Put(db, msg.DistributionID, d); err != nil {
		return nil, errors.Wrap(err, "cannot store distribution")
	}
	lockdrop.GetLogger(ctx).Debug("time offset set", "offset", msg.TimeOffset)
	return &lockdrop.DeliverResult{}, nil
}

func (h SetTimeOffsetHandler) validate(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*SetTimeOffsetMsg, *Distribution, error) {
	var msg SetTimeOffsetMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}
	if !conf.AllowTimeOffset {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "time offset is disabled")
	}
	var d Distribution
	if err := h.distributions.One(db, msg.DistributionID, &d); err != nil {
		return nil, nil, errors.Wrap(err, "distribution")
	}
	if !h.auth.HasAddress(ctx, d.Admin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}

	// The claim phase is terminal. An offset may move the clock forward into
	// it but never back out of it.
	now, err := Now(ctx, &d)
	if err != nil {
		return nil, nil, err
	}
	shifted := d
	shifted.TimeOffset = msg.TimeOffset
	then, err := Now(ctx, &shifted)
	if err != nil {
		return nil, nil, err
	}
	if d.Phase(now) == PhaseClaim && d.Phase(then) == PhaseRegistration {
		return nil, nil, errors.Wrap(errors.ErrInvalidState, "cannot reopen registration")
	}
	return &msg, &d, nil
}

// InfoHandler returns the JSON encoded Info of a voter. It never writes to
// the store.
type InfoHandler struct {
	oracle WeightOracle
	bank   CashController
}

var _ lockdrop.Handler = InfoHandler{}

func (h InfoHandler) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.CheckResult, error) {
	var msg InfoMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &lockdrop.CheckResult{GasAllocated: infoCost}, nil
}

func (h InfoHandler) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx) (*lockdrop.DeliverResult, error) {
	var msg InfoMsg
	if err := lockdrop.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	info, err := Report(ctx, db, h.oracle, h.bank, msg.DistributionID, msg.VoterID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	lockdrop.GetLogger(ctx).Info("distribution info", "info", string(raw))
	return &lockdrop.DeliverResult{Data: raw}, nil
}

// registeredWeight returns the weight a voter can register with right now.
// It fails once the registration phase is over or when nothing is locked
// through the weight time.
func registeredWeight(ctx lockdrop.Context, db lockdrop.ReadOnlyKVStore, oracle WeightOracle, d *Distribution, voterID []byte) (uint64, error) {
	now, err := Now(ctx, d)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	if d.Phase(now) != PhaseRegistration {
		return 0, errors.Wrapf(ErrTooLateToRegister, "registration closed at %s", d.RegistrationEndTs)
	}
	weight, err := oracle.GuaranteedLockedWeight(db, d.Registrar, voterID, now, d.WeightTs)
	if err != nil {
		return 0, oracleFailure(ctx, voterID, err)
	}
	if weight == 0 {
		return 0, errors.Wrapf(ErrNoLockedWeight, "nothing locked through %s", d.WeightTs)
	}
	return weight, nil
}

// oracleFailure logs the oracle error and hides it behind ErrOracle.
func oracleFailure(ctx lockdrop.Context, voterID []byte, err error) error {
	lockdrop.GetLogger(ctx).Error("weight oracle", "voter", fmt.Sprintf("%X", voterID), "err", err)
	return errors.Wrapf(ErrOracle, "voter %X", voterID)
}
