package utils

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/lockdrop/errors"
	"github.com/iov-one/lockdrop/store"
	"github.com/iov-one/lockdrop/weavetest"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "cash/send"}}

	_, err = m.Deliver(ctx, db, tx, &weavetest.Handler{})
	require.NoError(t, err)
	_, err = m.Deliver(ctx, db, tx, &weavetest.Handler{})
	require.NoError(t, err)
	_, err = m.Check(ctx, db, tx, &weavetest.Handler{CheckErr: errors.ErrNotFound})
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != "lockdrop_transactions_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			labels := make(map[string]string)
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			key := labels["mode"] + " " + labels["path"] + " " + labels["code"]
			counts[key] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"deliver cash/send 0": 2,
		"check cash/send 3":   1,
	}, counts)

	// Registering the same collectors twice is refused.
	_, err = NewMetrics(reg)
	assert.True(t, errors.ErrInvalidState.Is(err))
}
