package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/weavetest"
	"github.com/iov-one/lockdrop/weavetest/assert"
	"github.com/iov-one/lockdrop/x/distribute"
	"github.com/iov-one/lockdrop/x/lockup"
)

func TestKeysCmd(t *testing.T) {
	admin := weavetest.NewAddress()
	distID := distribute.DistributionID(admin, 3)
	registrar := seq(2)
	voter := lockup.VoterID(registrar, admin)

	cases := map[string]struct {
		args     []string
		wantErr  *errors.Error
		wantText []string
	}{
		"no command": {
			wantErr: errors.ErrInvalidInput,
		},
		"unknown command": {
			args:    []string{"fruits"},
			wantErr: errors.ErrInvalidInput,
		},
		"registrars": {
			args: []string{"registrars", "-offset", "2", "-limit", "1"},
			wantText: []string{
				fmt.Sprintf("%X", registrar),
				lockup.VaultCondition(registrar).Address().String(),
			},
		},
		"invalid registrars limit": {
			args:    []string{"registrars", "-limit", "0"},
			wantErr: errors.ErrInvalidInput,
		},
		"voter": {
			args:     []string{"voter", "2", admin.String()},
			wantText: []string{fmt.Sprintf("%X", voter)},
		},
		"distribution": {
			args: []string{"distribution", admin.String(), "3"},
			wantText: []string{
				fmt.Sprintf("%X", distID),
				distribute.VaultCondition(distID).Address().String(),
				distribute.DepositCondition(distID).Address().String(),
			},
		},
		"distribution with invalid index": {
			args:    []string{"distribution", admin.String(), "-1"},
			wantErr: errors.ErrInvalidInput,
		},
		"participant": {
			args:     []string{"participant", fmt.Sprintf("%X", distID), fmt.Sprintf("%x", voter)},
			wantText: []string{fmt.Sprintf("%X", distribute.ParticipantID(distID, voter))},
		},
		"participant of a short distribution id": {
			args:    []string{"participant", "0102", "03"},
			wantErr: errors.ErrInvalidInput,
		},
		"participant with invalid hex": {
			args:    []string{"participant", "zz", "03"},
			wantErr: errors.ErrInvalidInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var out bytes.Buffer
			err := KeysCmd(&out, tc.args)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			for _, want := range tc.wantText {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output does not contain %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestSeq(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, seq(1))
}
