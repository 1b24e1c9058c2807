package distribute

import (
	"math/rand"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/weavetest/assert"
)

// TestRandomOperations runs random registrations, updates and claims and
// checks the weight aggregate and the payouts after every step.
func TestRandomOperations(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		e := newEnv(t)
		id := e.createDistribution(1, 100)
		vault := e.distribution(id).Vault
		funds := 1 + rnd.Int63n(1000000)
		e.fund(vault, funds)

		type voter struct {
			id         []byte
			authority  lockdrop.Condition
			registered bool
			weight     uint64
		}
		var voters []*voter
		for i := 0; i < 20; i++ {
			w := uint64(1 + rnd.Int63n(1<<40))
			vid, auth := e.newVoter(w)
			voters = append(voters, &voter{id: vid, authority: auth, weight: w})
		}

		// registeredSum returns the weight held by open participants.
		registeredSum := func() *uint256.Int {
			sum := new(uint256.Int)
			ps, err := NewParticipantBucket().ByDistribution(e.db, id)
			assert.Nil(t, err)
			for _, p := range ps {
				sum.Add(sum, uint256.NewInt(p.Weight))
			}
			return sum
		}
		claimedSum := new(uint256.Int)

		for step := 0; step < 60; step++ {
			v := voters[rnd.Intn(len(voters))]
			switch {
			case !v.registered:
				assert.Nil(t, e.register(id, v.id, v.authority))
				v.registered = true
			default:
				grow := uint64(rnd.Int63n(1000))
				v.weight += grow
				e.oracle.setVoter(e.registrar, v.id, v.authority.Address(), v.weight)
				assert.Nil(t, e.update(id, v.id))
			}
			assert.Equal(t, registeredSum(), e.distribution(id).TotalWeight())
		}

		e.chain.Advance(100 * time.Second)
		total := e.distribution(id).TotalWeight()
		paid := coin.NewCoin(0, 0, ticker)
		for _, v := range voters {
			if !v.registered {
				continue
			}
			var p Participant
			assert.Nil(t, NewParticipantBucket().One(e.db, ParticipantID(id, v.id), &p))

			dest := weavetest.NewCondition().Address()
			assert.Nil(t, e.claim(id, v.id, v.authority, dest))
			claimedSum.Add(claimedSum, uint256.NewInt(p.Weight))

			want, err := coin.NewCoin(funds, 0, ticker).ProRata(p.Weight, total)
			assert.Nil(t, err)
			assert.Equal(t, want, e.balance(dest))
			paid, err = paid.Add(want)
			assert.Nil(t, err)

			// Open and claimed weight always add up to the frozen total.
			sum := registeredSum()
			sum.Add(sum, claimedSum)
			assert.Equal(t, total, sum)
		}

		// The vault keeps less than one fractional unit per claim.
		rest := e.balance(vault)
		left, err := coin.NewCoin(funds, 0, ticker).Subtract(paid)
		assert.Nil(t, err)
		assert.Equal(t, left, rest)
		if rest.Whole != 0 || rest.Fractional >= int64(e.distribution(id).ClaimCount) {
			t.Fatalf("seed %d: dust %s larger than claim count", seed, rest)
		}
	}
}

func TestWeightNeverDecreases(t *testing.T) {
	e := newEnv(t)
	id := e.createDistribution(1, 100)
	voter, auth := e.newVoter(100)
	assert.Nil(t, e.register(id, voter, auth))

	steps := []struct {
		weight       uint64
		wantErr      *errors.Error
		wantRecorded uint64
	}{
		{weight: 150, wantRecorded: 150},
		{weight: 90, wantErr: ErrWeightDecrease, wantRecorded: 150},
		{weight: 150, wantRecorded: 150},
		{weight: 200, wantRecorded: 200},
		{weight: 1, wantErr: ErrWeightDecrease, wantRecorded: 200},
	}
	for _, step := range steps {
		e.oracle.setVoter(e.registrar, voter, auth.Address(), step.weight)
		assert.IsErr(t, step.wantErr, e.update(id, voter))

		var p Participant
		assert.Nil(t, NewParticipantBucket().One(e.db, ParticipantID(id, voter), &p))
		assert.Equal(t, step.wantRecorded, p.Weight)
		assert.Equal(t, uint256.NewInt(step.wantRecorded), e.distribution(id).TotalWeight())
	}
}
