package distribute

import (
	"github.com/holiman/uint256"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/orm"
)

const weightSize = 32

// Phase of a distribution.
type Phase int

const (
	PhaseRegistration Phase = iota + 1
	PhaseClaim
)

func (p Phase) String() string {
	switch p {
	case PhaseRegistration:
		return "registration"
	case PhaseClaim:
		return "claim"
	default:
		return "unknown"
	}
}

// Distribution is a pool of tokens split among registered participants.
type Distribution struct {
	Metadata  *lockdrop.Metadata `json:"metadata"`
	Admin     lockdrop.Address   `json:"admin"`
	Registrar []byte             `json:"registrar"`
	Ticker    string             `json:"ticker"`
	Vault     lockdrop.Address   `json:"vault"`
	Index     uint64             `json:"index"`
	// RegistrationEndTs is the first moment of the claim phase.
	RegistrationEndTs lockdrop.UnixTime `json:"registration_end_ts"`
	// WeightTs is the moment participant weight must stay locked through.
	WeightTs lockdrop.UnixTime `json:"weight_ts"`
	// ParticipantTotalWeight is a big endian 256 bit integer.
	ParticipantTotalWeight []byte `json:"participant_total_weight"`
	// TotalAmountToDistribute is set by the first claim.
	TotalAmountToDistribute *coin.Coin `json:"total_amount_to_distribute,omitempty"`
	ParticipantCount        uint32     `json:"participant_count"`
	ClaimCount              uint32     `json:"claim_count"`
	// TimeOffset in seconds is added to the block time.
	TimeOffset int64 `json:"time_offset,omitempty"`
}

var _ orm.Model = (*Distribution)(nil)

func (d *Distribution) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", d.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", d.Admin.Validate())
	if len(d.Registrar) == 0 {
		errs = errors.AppendField(errs, "Registrar", errors.ErrEmpty)
	}
	if !coin.IsCC(d.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrencyMismatch)
	}
	errs = errors.AppendField(errs, "Vault", d.Vault.Validate())
	if d.RegistrationEndTs <= 0 {
		errs = errors.AppendField(errs, "RegistrationEndTs", errors.ErrInvalidInput)
	}
	if d.WeightTs < d.RegistrationEndTs {
		errs = errors.AppendField(errs, "WeightTs", ErrWeightTime)
	}
	if len(d.ParticipantTotalWeight) != weightSize {
		errs = errors.AppendField(errs, "ParticipantTotalWeight", errors.ErrInvalidState)
	}
	if a := d.TotalAmountToDistribute; a != nil {
		if err := a.Validate(); err != nil {
			errs = errors.AppendField(errs, "TotalAmountToDistribute", err)
		} else if !a.IsNonNegative() || a.Ticker != d.Ticker {
			errs = errors.AppendField(errs, "TotalAmountToDistribute", errors.ErrInvalidAmount)
		}
	}
	if d.ClaimCount > d.ParticipantCount {
		errs = errors.AppendField(errs, "ClaimCount", errors.ErrInvalidState)
	}
	return errs
}

func (d *Distribution) Copy() orm.Model {
	return &Distribution{
		Metadata:                d.Metadata.Copy(),
		Admin:                   d.Admin,
		Registrar:               append([]byte(nil), d.Registrar...),
		Ticker:                  d.Ticker,
		Vault:                   d.Vault,
		Index:                   d.Index,
		RegistrationEndTs:       d.RegistrationEndTs,
		WeightTs:                d.WeightTs,
		ParticipantTotalWeight:  append([]byte(nil), d.ParticipantTotalWeight...),
		TotalAmountToDistribute: d.TotalAmountToDistribute.Clone(),
		ParticipantCount:        d.ParticipantCount,
		ClaimCount:              d.ClaimCount,
		TimeOffset:              d.TimeOffset,
	}
}

func (d *Distribution) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(d)
}

func (d *Distribution) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, d)
}

// TotalWeight returns the sum of weights of all registered participants.
func (d *Distribution) TotalWeight() *uint256.Int {
	return new(uint256.Int).SetBytes(d.ParticipantTotalWeight)
}

// SetTotalWeight stores the aggregated participant weight.
func (d *Distribution) SetTotalWeight(w *uint256.Int) {
	b := w.Bytes32()
	d.ParticipantTotalWeight = b[:]
}

// Phase returns the phase of the distribution at given moment.
func (d *Distribution) Phase(now lockdrop.UnixTime) Phase {
	if now < d.RegistrationEndTs {
		return PhaseRegistration
	}
	return PhaseClaim
}

// Now returns the block time shifted by the distribution time offset. All
// phase checks use it.
func Now(ctx lockdrop.Context, d *Distribution) (lockdrop.UnixTime, error) {
	t, err := lockdrop.BlockTime(ctx)
	if err != nil {
		return 0, err
	}
	return lockdrop.AsUnixTime(t).AddSeconds(d.TimeOffset), nil
}

// Participant entitles a voter to a share of a distribution.
type Participant struct {
	Metadata       *lockdrop.Metadata `json:"metadata"`
	Distribution   []byte             `json:"distribution"`
	Voter          []byte             `json:"voter"`
	VoterAuthority lockdrop.Address   `json:"voter_authority"`
	// Payer receives the deposit back when the participant is closed.
	Payer   lockdrop.Address `json:"payer"`
	Weight  uint64           `json:"weight"`
	Deposit *coin.Coin       `json:"deposit,omitempty"`
}

var _ orm.Model = (*Participant)(nil)

func (p *Participant) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", p.Metadata.Validate())
	if len(p.Distribution) != distributionIDLen() {
		errs = errors.AppendField(errs, "Distribution", errors.ErrInvalidInput)
	}
	if len(p.Voter) == 0 {
		errs = errors.AppendField(errs, "Voter", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "VoterAuthority", p.VoterAuthority.Validate())
	errs = errors.AppendField(errs, "Payer", p.Payer.Validate())
	if p.Weight == 0 {
		errs = errors.AppendField(errs, "Weight", ErrNoLockedWeight)
	}
	if p.Deposit != nil {
		if err := p.Deposit.Validate(); err != nil {
			errs = errors.AppendField(errs, "Deposit", err)
		} else if !p.Deposit.IsNonNegative() {
			errs = errors.AppendField(errs, "Deposit", errors.ErrInvalidAmount)
		}
	}
	return errs
}

func (p *Participant) Copy() orm.Model {
	return &Participant{
		Metadata:       p.Metadata.Copy(),
		Distribution:   append([]byte(nil), p.Distribution...),
		Voter:          append([]byte(nil), p.Voter...),
		VoterAuthority: p.VoterAuthority,
		Payer:          p.Payer,
		Weight:         p.Weight,
		Deposit:        p.Deposit.Clone(),
	}
}

func (p *Participant) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(p)
}

func (p *Participant) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, p)
}

// DistributionBucket stores distributions keyed by DistributionID.
type DistributionBucket struct {
	orm.ModelBucket
}

// NewDistributionBucket returns a bucket for distributions, indexed by
// admin.
func NewDistributionBucket() DistributionBucket {
	return DistributionBucket{
		ModelBucket: orm.NewModelBucket("distribution", &Distribution{},
			orm.WithIndex("admin", distributionAdmin, false)),
	}
}

func distributionAdmin(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	d, ok := obj.Value().(*Distribution)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "not a distribution: %T", obj.Value())
	}
	return d.Admin, nil
}

// ParticipantBucket stores participants keyed by ParticipantID.
type ParticipantBucket struct {
	orm.ModelBucket
}

// NewParticipantBucket returns a bucket for participants, indexed by
// distribution.
func NewParticipantBucket() ParticipantBucket {
	return ParticipantBucket{
		ModelBucket: orm.NewModelBucket("participant", &Participant{},
			orm.WithIndex("distribution", participantDistribution, false)),
	}
}

// ByDistribution returns all open participants of a distribution.
func (b ParticipantBucket) ByDistribution(db lockdrop.ReadOnlyKVStore, distributionID []byte) ([]*Participant, error) {
	var participants []*Participant
	if _, err := b.ByIndex(db, "distribution", distributionID, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func participantDistribution(obj orm.Object) ([]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	p, ok := obj.Value().(*Participant)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "not a participant: %T", obj.Value())
	}
	return p.Distribution, nil
}

func weightOf(w uint64) *uint256.Int {
	return uint256.NewInt(w)
}

func zeroWeight() *uint256.Int {
	return new(uint256.Int)
}
