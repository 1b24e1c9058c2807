package distribute

import (
	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/gconf"
)

const packageName = "distribute"

// Configuration of the distribute extension, stored with gconf.
type Configuration struct {
	Metadata *lockdrop.Metadata `json:"metadata"`
	// Owner can update the configuration.
	Owner lockdrop.Address `json:"owner"`
	// AllowTimeOffset enables SetTimeOffsetMsg. Never enable it on a
	// production chain.
	AllowTimeOffset bool `json:"allow_time_offset"`
	// ParticipantDeposit is collected from the payer of every new
	// participant and refunded when the participant claims.
	ParticipantDeposit *coin.Coin `json:"participant_deposit,omitempty"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() lockdrop.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if d := c.ParticipantDeposit; d != nil {
		if err := d.Validate(); err != nil {
			errs = errors.AppendField(errs, "ParticipantDeposit", err)
		} else if !d.IsNonNegative() {
			errs = errors.AppendField(errs, "ParticipantDeposit", errors.ErrInvalidAmount)
		}
	}
	return errs
}

func (c *Configuration) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, c)
}

// loadConf returns the stored configuration. A chain that was never
// configured allows no time offset and takes no deposit.
func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return &Configuration{}, nil
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
