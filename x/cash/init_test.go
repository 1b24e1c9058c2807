package cash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/lockdrop"
	"github.com/iov-one/lockdrop/coin"
	"github.com/iov-one/lockdrop/store"
)

func TestInitState(t *testing.T) {
	addr := lockdrop.Address{1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 0x21, 0x22, 0x23, 0x24, 0x25, 0x26, 0x27, 0x28, 0x29, 0x30}

	cases := map[string]struct {
		opts    lockdrop.Options
		wantErr bool
		acct    lockdrop.Address
		want    coin.Coins
	}{
		"no data": {
			opts: lockdrop.Options{},
		},
		"other extension data is ignored": {
			opts: lockdrop.Options{"foo": []byte(`"bar"`)},
		},
		"bad address": {
			opts:    lockdrop.Options{"cash": []byte(`[{"address": "1234", "coins": ["1 FOO"]}]`)},
			wantErr: true,
		},
		"malformed": {
			opts:    lockdrop.Options{"cash": []byte(`[{"coins": 123}]`)},
			wantErr: true,
		},
		"human readable coins are merged": {
			opts: lockdrop.Options{"cash": []byte(`[{
				"address": "0102030405060708090021222324252627282930",
				"coins": ["50.001234567 FOO", "1 BAR", "2 FOO"]
			}]`)},
			acct: addr,
			want: coin.Coins{coin.NewCoinp(1, 0, "BAR"), coin.NewCoinp(52, 1234567, "FOO")},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			kv := store.MemStore()
			err := Initializer{}.FromGenesis(tc.opts, kv)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.acct == nil {
				return
			}
			got, err := NewWalletBucket().Balance(kv, tc.acct)
			require.NoError(t, err)
			assert.True(t, tc.want.Equals(got), "got %v", got)
		})
	}
}
