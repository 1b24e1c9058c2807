package distribute

import (
	"context"
	"encoding/json"

	"github.com/jonboulle/clockwork"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/app"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
)

// Info is a snapshot of a distribution as seen by a single voter. User
// interfaces use it to decide which operations are available.
type Info struct {
	// ParticipantTotalWeight is the decimal form of the weight aggregate.
	ParticipantTotalWeight string    `json:"participant_total_weight"`
	DistributionAmount     coin.Coin `json:"distribution_amount"`
	CanRegister            bool      `json:"can_register"`
	InClaimPhase           bool      `json:"in_claim_phase"`
	// UsableWeight is set only while the voter can register or update.
	UsableWeight *uint64 `json:"usable_weight,omitempty"`
	// RegisteredWeight is set when the voter is an open participant.
	RegisteredWeight *uint64 `json:"registered_weight,omitempty"`
}

// Report builds the Info of a voter in a distribution.
func Report(
	ctx lockdrop.Context,
	db lockdrop.ReadOnlyKVStore,
	oracle WeightOracle,
	bank CashController,
	distributionID, voterID []byte,
) (*Info, error) {
	var d Distribution
	if err := NewDistributionBucket().One(db, distributionID, &d); err != nil {
		return nil, errors.Wrap(err, "distribution")
	}
	now, err := Now(ctx, &d)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	balance, err := bank.Balance(db, d.Vault)
	if err != nil {
		return nil, errors.Wrap(err, "vault balance")
	}

	info := Info{
		ParticipantTotalWeight: d.TotalWeight().Dec(),
		DistributionAmount:     balance.Get(d.Ticker),
		CanRegister:            d.Phase(now) == PhaseRegistration,
		InClaimPhase:           d.Phase(now) == PhaseClaim,
	}
	if info.CanRegister {
		w, err := oracle.GuaranteedLockedWeight(db, d.Registrar, voterID, now, d.WeightTs)
		if err != nil {
			return nil, oracleFailure(ctx, voterID, err)
		}
		info.UsableWeight = &w
	}

	var p Participant
	switch err := NewParticipantBucket().One(db, ParticipantID(distributionID, voterID), &p); {
	case err == nil:
		info.RegisteredWeight = &p.Weight
	case !errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(err, "participant")
	}
	return &info, nil
}

// InfoQuery serves Info over the query interface. Query data is the
// distribution ID followed by the voter ID. Phases are evaluated at the time
// of the last committed block, which is what the next transaction is checked
// against. The clock is only read before the first block.
type InfoQuery struct {
	clock  clockwork.Clock
	oracle WeightOracle
	bank   CashController
}

var _ lockdrop.QueryHandler = InfoQuery{}

// NewInfoQuery returns a query handler falling back to clock while no block
// was committed.
func NewInfoQuery(clock clockwork.Clock, oracle WeightOracle, bank CashController) InfoQuery {
	return InfoQuery{clock: clock, oracle: oracle, bank: bank}
}

func (q InfoQuery) Query(db lockdrop.ReadOnlyKVStore, mod string, data []byte) ([]lockdrop.Model, error) {
	if mod != lockdrop.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unsupported query mod %q", mod)
	}
	distributionID, voterID, err := SplitParticipantID(data)
	if err != nil {
		return nil, err
	}
	now, err := app.LastBlockTime(db)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		now = q.clock.Now()
	default:
		return nil, err
	}
	ctx := lockdrop.WithBlockTime(context.Background(), now)
	info, err := Report(ctx, db, q.oracle, q.bank, distributionID, voterID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return []lockdrop.Model{lockdrop.Pair(data, raw)}, nil
}

// RegisterQuery exposes distributions and participants.
func RegisterQuery(qr lockdrop.QueryRouter) {
	NewDistributionBucket().Register("distributions", qr)
	NewParticipantBucket().Register("participants", qr)
}

// RegisterInfoQuery exposes Info under /distributions/info.
func RegisterInfoQuery(qr lockdrop.QueryRouter, clock clockwork.Clock, oracle WeightOracle, bank CashController) {
	qr.Register("/distributions/info", NewInfoQuery(clock, oracle, bank))
}
