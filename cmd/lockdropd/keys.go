package main

import (
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/lockup"
)

const keysUsage = `Usage:
	keys registrars [-offset N] [-limit N]
	keys voter <registrar sequence> <authority address>
	keys distribution <admin address> <index>
	keys participant <distribution id> <voter id>

Registrars are keyed by a sequence counter. All other keys are derived from
their parts, so they can be precomputed when creating a genesis file or a
transaction. Identifiers are printed and accepted in hex.
`

// KeysCmd prints deterministic keys and addresses used by the lockup and
// distribute extensions.
func KeysCmd(out io.Writer, args []string) error {
	if len(args) == 0 {
		return errors.Wrap(errors.ErrInvalidInput, keysUsage)
	}
	switch args[0] {
	case "registrars":
		return printRegistrars(out, args[1:])
	case "voter":
		return printVoter(out, args[1:])
	case "distribution":
		return printDistribution(out, args[1:])
	case "participant":
		return printParticipant(out, args[1:])
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown keys command %q\n%s", args[0], keysUsage)
	}
}

func printRegistrars(out io.Writer, args []string) error {
	fl := flag.NewFlagSet("registrars", flag.ContinueOnError)
	fl.SetOutput(out)
	offsetFl := fl.Int("offset", 1, "Ignore first N registrars.")
	limitFl := fl.Int("limit", 10, "Print N registrars.")
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if *offsetFl < 1 || *limitFl < 1 {
		return errors.Wrap(errors.ErrInvalidInput, "offset and limit must be greater than zero")
	}

	w := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "sequence\tregistrar\tvault")
	for i := *offsetFl; i < *offsetFl+*limitFl; i++ {
		id := seq(uint64(i))
		fmt.Fprintf(w, "%d\t%X\t%s\n", i, id, lockup.VaultCondition(id).Address())
	}
	return nil
}

func printVoter(out io.Writer, args []string) error {
	if len(args) != 2 {
		return errors.Wrap(errors.ErrInvalidInput, keysUsage)
	}
	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "registrar sequence: %s", err)
	}
	authority, err := lockdrop.ParseAddress(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%X\n", lockup.VoterID(seq(n), authority))
	return nil
}

func printDistribution(out io.Writer, args []string) error {
	if len(args) != 2 {
		return errors.Wrap(errors.ErrInvalidInput, keysUsage)
	}
	admin, err := lockdrop.ParseAddress(args[0])
	if err != nil {
		return err
	}
	index, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "index: %s", err)
	}
	id := distribute.DistributionID(admin, index)
	vault := distribute.VaultCondition(id).Address()

	w := tabwriter.NewWriter(out, 2, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "id\t%X\n", id)
	fmt.Fprintf(w, "vault\t%s\n", vault)
	fmt.Fprintf(w, "vault (bech32)\t%s\n", vault.Bech32())
	fmt.Fprintf(w, "vault (base58)\t%s\n", vault.Base58())
	fmt.Fprintf(w, "deposits\t%s\n", distribute.DepositCondition(id).Address())
	return nil
}

func printParticipant(out io.Writer, args []string) error {
	if len(args) != 2 {
		return errors.Wrap(errors.ErrInvalidInput, keysUsage)
	}
	distributionID, err := decodeHex("distribution id", args[0])
	if err != nil {
		return err
	}
	voterID, err := decodeHex("voter id", args[1])
	if err != nil {
		return err
	}
	id := distribute.ParticipantID(distributionID, voterID)
	if _, _, err := distribute.SplitParticipantID(id); err != nil {
		return err
	}
	fmt.Fprintf(out, "%X\n", id)
	return nil
}

func decodeHex(name, s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "%s: %s", name, err)
	}
	return raw, nil
}

// seq returns binary representation of a sequence number.
func seq(i uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, i)
	return b
}
