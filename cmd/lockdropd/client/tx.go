package client

import (
	"github.com/iov-one/lockdrop"
	lockdropd "github.com/iov-one/lockdrop/cmd/lockdropd/app"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/crypto"
	"github.com/iov-one/lockdrop/x/cash"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/lockup"
	"github.com/iov-one/lockdrop/x/sigs"
)

func metadata() *lockdrop.Metadata {
	return &lockdrop.Metadata{Schema: 1}
}

// BuildSendTx will create an unsigned tx to move tokens
func BuildSendTx(src, dest lockdrop.Address, amount coin.Coin, memo string) *lockdropd.Tx {
	return &lockdropd.Tx{Msg: &cash.SendMsg{
		Metadata:    metadata(),
		Source:      src,
		Destination: dest,
		Amount:      &amount,
		Memo:        memo,
	}}
}

// BuildLockTx will create an unsigned tx locking amount in a registrar
// until end.
func BuildLockTx(registrar []byte, authority lockdrop.Address, amount coin.Coin, end lockdrop.UnixTime) *lockdropd.Tx {
	return &lockdropd.Tx{Msg: &lockup.DepositMsg{
		Metadata:  metadata(),
		Registrar: registrar,
		Authority: authority,
		Amount:    &amount,
		Kind:      lockup.Cliff,
		EndTs:     end,
	}}
}

// BuildCreateDistributionTx will create an unsigned tx opening a
// distribution. Its ID is distribute.DistributionID(admin, index).
func BuildCreateDistributionTx(admin lockdrop.Address, registrar []byte, ticker string, index uint64, registrationEnd, weightTime lockdrop.UnixTime) *lockdropd.Tx {
	return &lockdropd.Tx{Msg: &distribute.CreateDistributionMsg{
		Metadata:          metadata(),
		Admin:             admin,
		Registrar:         registrar,
		Ticker:            ticker,
		Index:             index,
		RegistrationEndTs: registrationEnd,
		WeightTs:          weightTime,
	}}
}

// BuildRegisterTx will create an unsigned tx registering a voter in a
// distribution. Both the voter authority and the payer must sign it.
func BuildRegisterTx(distributionID, voterID []byte, payer lockdrop.Address) *lockdropd.Tx {
	return &lockdropd.Tx{Msg: &distribute.CreateParticipantMsg{
		Metadata:       metadata(),
		DistributionID: distributionID,
		VoterID:        voterID,
		Payer:          payer,
	}}
}

// BuildUpdateTx will create an unsigned tx refreshing the weight of a
// participant.
func BuildUpdateTx(distributionID, voterID []byte) *lockdropd.Tx {
	return &lockdropd.Tx{Msg: &distribute.UpdateParticipantMsg{
		Metadata:       metadata(),
		DistributionID: distributionID,
		VoterID:        voterID,
	}}
}

// BuildClaimTx will create an unsigned tx paying the share of a participant
// to dest.
func BuildClaimTx(distributionID, voterID []byte, dest lockdrop.Address) *lockdropd.Tx {
	return &lockdropd.Tx{Msg: &distribute.ClaimMsg{
		Metadata:      metadata(),
		ParticipantID: distribute.ParticipantID(distributionID, voterID),
		Destination:   dest,
	}}
}

// SignTx modifies the tx in-place, adding signatures
func SignTx(tx *lockdropd.Tx, signer crypto.Signer, chainID string, nonce int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, nonce)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}
