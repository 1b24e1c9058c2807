package distribute

import (
	"testing"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/app"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/weavetest/assert"
	"github.com/iov-one/lockdrop/x/utils"
)

// failAfter lets the transaction run and then fails it.
type failAfter struct{}

func (failAfter) Check(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Checker) (*lockdrop.CheckResult, error) {
	if _, err := next.Check(ctx, db, tx); err != nil {
		return nil, err
	}
	return nil, errors.Wrap(errors.ErrInvalidState, "rejected after check")
}

func (failAfter) Deliver(ctx lockdrop.Context, db lockdrop.KVStore, tx lockdrop.Tx, next lockdrop.Deliverer) (*lockdrop.DeliverResult, error) {
	if _, err := next.Deliver(ctx, db, tx); err != nil {
		return nil, err
	}
	return nil, errors.Wrap(errors.ErrInvalidState, "rejected after deliver")
}

func TestSavepointKeepsRegistrationAtomic(t *testing.T) {
	cases := map[string]struct {
		save       utils.Savepoint
		wantStored bool
	}{
		"savepoint discards the registration": {
			save:       utils.NewSavepoint().OnDeliver(),
			wantStored: false,
		},
		"without savepoint the writes leak": {
			save:       utils.NewSavepoint().OnCheck(),
			wantStored: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := newEnv(t)
			id := e.createDistribution(1, 100)
			voter, auth := e.newVoter(70)

			h := app.ChainDecorators(tc.save, failAfter{}).WithHandler(e.router)
			ctx := e.auth.SetConditions(e.chain.Context(), auth)
			tx := &weavetest.Tx{Msg: &CreateParticipantMsg{
				Metadata:       &lockdrop.Metadata{Schema: 1},
				DistributionID: id,
				VoterID:        voter,
				Payer:          auth.Address(),
			}}
			_, err := h.Deliver(ctx, e.db, tx)
			assert.IsErr(t, errors.ErrInvalidState, err)

			d := e.distribution(id)
			err = NewParticipantBucket().Has(e.db, ParticipantID(id, voter))
			if tc.wantStored {
				assert.Nil(t, err)
				assert.Equal(t, uint32(1), d.ParticipantCount)
				assert.Equal(t, "70", d.TotalWeight().Dec())
				return
			}
			assert.IsErr(t, errors.ErrNotFound, err)
			assert.Equal(t, uint32(0), d.ParticipantCount)
			assert.Equal(t, true, d.TotalWeight().IsZero())
		})
	}
}
