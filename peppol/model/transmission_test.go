package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCanAdvance(t *testing.T) {

	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusSubmitted, StatusProcessing, true},
		{StatusSubmitted, StatusSent, true},
		{StatusSubmitted, StatusDelivered, true},
		{StatusProcessing, StatusSent, true},
		{StatusSent, StatusDelivered, true},
		{StatusSent, StatusRead, true},
		{StatusSubmitted, StatusFailed, true},
		{StatusSent, StatusFailed, true},

		{StatusDelivered, StatusDelivered, false},
		{StatusDelivered, StatusRead, false},
		{StatusRead, StatusDelivered, false},
		{StatusDelivered, StatusProcessing, false},
		{StatusDelivered, StatusFailed, false},
		{StatusFailed, StatusDelivered, false},
		{StatusSent, StatusProcessing, false},
		{StatusProcessing, StatusSubmitted, false},
		{StatusProcessing, StatusProcessing, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanAdvance(tc.to),
			"%s -> %s", tc.from.Name(), tc.to.Name())
	}
}

func TestStatusRoundtrip(t *testing.T) {

	for _, s := range []Status{StatusSubmitted, StatusProcessing, StatusSent, StatusDelivered, StatusRead, StatusFailed} {
		var parsed Status
		require.NoError(t, parsed.UnmarshalText([]byte(s.Name())))
		assert.Equal(t, s, parsed)
	}

	var parsed Status
	require.Error(t, parsed.UnmarshalText([]byte("shipped")))
}
