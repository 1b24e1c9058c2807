package distribute

import (
	"encoding/binary"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
)

// DistributionID returns the key of the distribution created by admin with
// given index.
func DistributionID(admin lockdrop.Address, index uint64) []byte {
	id := make([]byte, len(admin)+8)
	copy(id, admin)
	binary.BigEndian.PutUint64(id[len(admin):], index)
	return id
}

// ParticipantID returns the key of the participant record of a voter.
func ParticipantID(distributionID, voterID []byte) []byte {
	id := make([]byte, 0, len(distributionID)+len(voterID))
	id = append(id, distributionID...)
	return append(id, voterID...)
}

// SplitParticipantID returns the distribution and voter IDs a participant
// ID was built from.
func SplitParticipantID(participantID []byte) (distributionID, voterID []byte, err error) {
	n := distributionIDLen()
	if len(participantID) <= n {
		return nil, nil, errors.Wrapf(errors.ErrInvalidInput, "participant id of %d bytes", len(participantID))
	}
	return participantID[:n], participantID[n:], nil
}

func distributionIDLen() int {
	return lockdrop.AddressLength + 8
}

// VaultCondition returns the condition that controls the tokens being
// distributed. Only the claim handler of this extension can act as it.
func VaultCondition(distributionID []byte) lockdrop.Condition {
	return lockdrop.NewCondition("distribute", "vault", distributionID)
}

// DepositCondition returns the condition holding the participant storage
// deposits of a distribution until they are refunded.
func DepositCondition(distributionID []byte) lockdrop.Condition {
	return lockdrop.NewCondition("distribute", "deposit", distributionID)
}
