package lockdropd

import (
	"encoding/hex"
	"strings"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/commands"
	"github.com/iov-one/lockdrop/crypto"
	"github.com/iov-one/lockdrop/x/cash"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/lockup"
	"github.com/iov-one/lockdrop/x/sigs"
)

// we fix the private keys here for deterministic output with the same encoding
// these are not secure at all, but the only point is to check the format,
// which is easier when everything is reproduceable.
var (
	admin = makePrivKey("1234567890")
	voter = makePrivKey("F00BA411")
)

// makePrivKey repeats the string as long as needed to get 64 digits, then
// parses it as hex. It uses this repeated string as a "random" seed
// for the private key.
func makePrivKey(seed string) *crypto.PrivateKey {
	rep := 64/len(seed) + 1
	in := strings.Repeat(seed, rep)[:64]
	bin, err := hex.DecodeString(in)
	if err != nil {
		panic(err)
	}
	return crypto.PrivKeyEd25519FromSeed(bin)
}

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	meta := &lockdrop.Metadata{Schema: 1}
	adminAddr := admin.PublicKey().Address()
	voterAddr := voter.PublicKey().Address()
	registrar := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	distID := distribute.DistributionID(adminAddr, 1)
	voterID := lockup.VoterID(registrar, voterAddr)

	wallet := &cash.Set{
		Metadata: meta,
		Coins:    coin.Coins{coin.NewCoinp(1500, 250000000, "LDT")},
	}
	user := &sigs.UserData{
		Metadata: meta,
		Pubkey:   voter.PublicKey(),
		Sequence: 17,
	}

	createMsg := &distribute.CreateDistributionMsg{
		Metadata:          meta,
		Admin:             adminAddr,
		Registrar:         registrar,
		Ticker:            "LDT",
		Index:             1,
		RegistrationEndTs: 1600000000,
		WeightTs:          1610000000,
	}
	lockMsg := &lockup.DepositMsg{
		Metadata:  meta,
		Registrar: registrar,
		Authority: voterAddr,
		Amount:    coin.NewCoinp(100, 0, "LDT"),
		Kind:      lockup.Cliff,
		EndTs:     1620000000,
	}
	registerMsg := &distribute.CreateParticipantMsg{
		Metadata:       meta,
		DistributionID: distID,
		VoterID:        voterID,
		Payer:          voterAddr,
	}
	claimMsg := &distribute.ClaimMsg{
		Metadata:      meta,
		ParticipantID: distribute.ParticipantID(distID, voterID),
		Destination:   voterAddr,
	}

	unsigned := Tx{Msg: claimMsg}
	tx := unsigned
	sig, err := sigs.SignTx(voter, &tx, "test-123", 17)
	if err != nil {
		panic(err)
	}
	tx.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "wallet", Obj: wallet},
		{Filename: "pub_key", Obj: voter.PublicKey()},
		{Filename: "user", Obj: user},
		{Filename: "create_distribution_msg", Obj: createMsg},
		{Filename: "lockup_deposit_msg", Obj: lockMsg},
		{Filename: "create_participant_msg", Obj: registerMsg},
		{Filename: "claim_msg", Obj: claimMsg},
		{Filename: "unsigned_tx", Obj: &unsigned},
		{Filename: "signed_tx", Obj: &tx},
	}
}
