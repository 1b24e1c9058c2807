package distribute

import (
	"fmt"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/errors"
)

func init() {
	lockdrop.RegisterMsg(&CreateDistributionMsg{}, "distribute/create_distribution")
	lockdrop.RegisterMsg(&CreateParticipantMsg{}, "distribute/create_participant")
	lockdrop.RegisterMsg(&UpdateParticipantMsg{}, "distribute/update_participant")
	lockdrop.RegisterMsg(&ClaimMsg{}, "distribute/claim")
	lockdrop.RegisterMsg(&SetTimeOffsetMsg{}, "distribute/set_time_offset")
	lockdrop.RegisterMsg(&InfoMsg{}, "distribute/info")
	lockdrop.RegisterMsg(&UpdateConfigurationMsg{}, "distribute/update_configuration")
}

// CreateDistributionMsg creates a distribution with an empty vault. The
// vault can be funded with cash transfers at any time before the first
// claim.
type CreateDistributionMsg struct {
	Metadata          *lockdrop.Metadata `json:"metadata"`
	Admin             lockdrop.Address   `json:"admin"`
	Registrar         []byte             `json:"registrar"`
	Ticker            string             `json:"ticker"`
	Index             uint64             `json:"index"`
	RegistrationEndTs lockdrop.UnixTime  `json:"registration_end_ts"`
	WeightTs          lockdrop.UnixTime  `json:"weight_ts"`
}

var _ lockdrop.Msg = (*CreateDistributionMsg)(nil)

func (CreateDistributionMsg) Path() string {
	return "distribute/create_distribution"
}

func (m *CreateDistributionMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if len(m.Registrar) == 0 {
		errs = errors.AppendField(errs, "Registrar", errors.ErrEmpty)
	}
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrencyMismatch)
	}
	if m.RegistrationEndTs <= 0 {
		errs = errors.AppendField(errs, "RegistrationEndTs", errors.ErrInvalidInput)
	}
	if m.WeightTs < m.RegistrationEndTs {
		errs = errors.AppendField(errs, "WeightTs", ErrWeightTime)
	}
	return errs
}

func (m *CreateDistributionMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *CreateDistributionMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// CreateParticipantMsg registers a voter. Both the voter authority and the
// payer must sign.
type CreateParticipantMsg struct {
	Metadata       *lockdrop.Metadata `json:"metadata"`
	DistributionID []byte             `json:"distribution_id"`
	VoterID        []byte             `json:"voter_id"`
	Payer          lockdrop.Address   `json:"payer"`
}

var _ lockdrop.Msg = (*CreateParticipantMsg)(nil)

func (CreateParticipantMsg) Path() string {
	return "distribute/create_participant"
}

func (m *CreateParticipantMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "DistributionID", validateDistributionID(m.DistributionID))
	if len(m.VoterID) == 0 {
		errs = errors.AppendField(errs, "VoterID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
	return errs
}

func (m *CreateParticipantMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *CreateParticipantMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// UpdateParticipantMsg recomputes the weight of a registered voter. Anyone
// can send it.
type UpdateParticipantMsg struct {
	Metadata       *lockdrop.Metadata `json:"metadata"`
	DistributionID []byte             `json:"distribution_id"`
	VoterID        []byte             `json:"voter_id"`
}

var _ lockdrop.Msg = (*UpdateParticipantMsg)(nil)

func (UpdateParticipantMsg) Path() string {
	return "distribute/update_participant"
}

func (m *UpdateParticipantMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "DistributionID", validateDistributionID(m.DistributionID))
	if len(m.VoterID) == 0 {
		errs = errors.AppendField(errs, "VoterID", errors.ErrEmpty)
	}
	return errs
}

func (m *UpdateParticipantMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *UpdateParticipantMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// ClaimMsg pays the share of a participant to Destination and closes the
// participant. The voter authority must sign.
type ClaimMsg struct {
	Metadata      *lockdrop.Metadata `json:"metadata"`
	ParticipantID []byte             `json:"participant_id"`
	Destination   lockdrop.Address   `json:"destination"`
}

var _ lockdrop.Msg = (*ClaimMsg)(nil)

func (ClaimMsg) Path() string {
	return "distribute/claim"
}

func (m *ClaimMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if _, _, err := SplitParticipantID(m.ParticipantID); err != nil {
		errs = errors.AppendField(errs, "ParticipantID", err)
	}
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	return errs
}

func (m *ClaimMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *ClaimMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// SetTimeOffsetMsg shifts the clock of a distribution. It is accepted only
// when the configuration allows it and must be signed by the admin.
type SetTimeOffsetMsg struct {
	Metadata       *lockdrop.Metadata `json:"metadata"`
	DistributionID []byte             `json:"distribution_id"`
	TimeOffset     int64              `json:"time_offset"`
}

var _ lockdrop.Msg = (*SetTimeOffsetMsg)(nil)

func (SetTimeOffsetMsg) Path() string {
	return "distribute/set_time_offset"
}

func (m *SetTimeOffsetMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "DistributionID", validateDistributionID(m.DistributionID))
	return errs
}

func (m *SetTimeOffsetMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *SetTimeOffsetMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// InfoMsg returns the JSON encoded Info of a voter in a distribution. It
// does not modify the state.
type InfoMsg struct {
	Metadata       *lockdrop.Metadata `json:"metadata"`
	DistributionID []byte             `json:"distribution_id"`
	VoterID        []byte             `json:"voter_id"`
}

var _ lockdrop.Msg = (*InfoMsg)(nil)

func (InfoMsg) Path() string {
	return "distribute/info"
}

func (m *InfoMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "DistributionID", validateDistributionID(m.DistributionID))
	if len(m.VoterID) == 0 {
		errs = errors.AppendField(errs, "VoterID", errors.ErrEmpty)
	}
	return errs
}

func (m *InfoMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *InfoMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

// UpdateConfigurationMsg patches the configuration. Zero value fields of
// the patch are ignored.
type UpdateConfigurationMsg struct {
	Metadata *lockdrop.Metadata `json:"metadata"`
	Patch    *Configuration     `json:"patch"`
}

var _ lockdrop.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "distribute/update_configuration"
}

func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Patch == nil {
		errs = errors.AppendField(errs, "Patch", errors.ErrEmpty)
	}
	return errs
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return lockdrop.MarshalBinary(m)
}

func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return lockdrop.UnmarshalBinary(raw, m)
}

func validateDistributionID(id []byte) error {
	if len(id) != distributionIDLen() {
		return errors.Wrapf(errors.ErrInvalidInput, "distribution id of %d bytes", len(id))
	}
	return nil
}

// LogFields names the distribution in transaction logs.
func (m *CreateDistributionMsg) LogFields() []interface{} {
	return []interface{}{
		"distribution", hexID(DistributionID(m.Admin, m.Index)),
		"registration_end", m.RegistrationEndTs,
	}
}

func (m *CreateParticipantMsg) LogFields() []interface{} {
	return []interface{}{"distribution", hexID(m.DistributionID), "voter", hexID(m.VoterID)}
}

func (m *UpdateParticipantMsg) LogFields() []interface{} {
	return []interface{}{"distribution", hexID(m.DistributionID), "voter", hexID(m.VoterID)}
}

func (m *ClaimMsg) LogFields() []interface{} {
	distributionID, voterID, err := SplitParticipantID(m.ParticipantID)
	if err != nil {
		return []interface{}{"participant", hexID(m.ParticipantID)}
	}
	return []interface{}{"distribution", hexID(distributionID), "voter", hexID(voterID)}
}

func (m *SetTimeOffsetMsg) LogFields() []interface{} {
	return []interface{}{"distribution", hexID(m.DistributionID), "offset", m.TimeOffset}
}

func (m *InfoMsg) LogFields() []interface{} {
	return []interface{}{"distribution", hexID(m.DistributionID), "voter", hexID(m.VoterID)}
}

func hexID(id []byte) string {
	return fmt.Sprintf("%X", id)
}
