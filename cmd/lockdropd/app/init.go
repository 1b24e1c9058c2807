package lockdropd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/crypto"
	"github.com/iov-one/lockdrop/x/cash"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/lockup"
)

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// The first argument is the ticker (default LDT), the second is the hex
// address of the account. If no address is given a new key is generated
// and printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "LDT"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, fmt.Errorf("invalid ticker %s", ticker)
		}
	}

	var addr lockdrop.Address
	if len(args) > 1 {
		var err error
		if addr, err = lockdrop.ParseAddress(args[1]); err != nil {
			return nil, err
		}
	} else {
		key := crypto.GenPrivKeyEd25519()
		addr = key.PublicKey().Address()
		fmt.Printf("generated key %X for %s\n", key.Ed25519, addr)
	}

	genesis := struct {
		Cash   []cash.GenesisAccount  `json:"cash"`
		Lockup lockup.Genesis         `json:"lockup"`
		Conf   map[string]interface{} `json:"conf"`
	}{
		Cash: []cash.GenesisAccount{
			{Address: addr, Coins: coin.Coins{coin.NewCoinp(123456789, 0, ticker)}},
		},
		Lockup: lockup.Genesis{
			Registrars: []lockup.GenesisRegistrar{
				{Admin: addr, Ticker: ticker},
			},
		},
		Conf: map[string]interface{}{
			"distribute": distribute.Configuration{
				Metadata: &lockdrop.Metadata{Schema: 1},
				Owner:    addr,
			},
		},
	}
	return json.MarshalIndent(genesis, "", "  ")
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "lockdrop.db")
	}

	stack, err := Stack(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	application, err := Application("lockdropd", stack, TxDecoder, clockwork.NewRealClock(), dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(logger)
	return application, nil
}
