// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec([]byte("secret"), DefaultTTL)
	s := New(time.Now())

	value, err := codec.Encode(s)
	require.NoError(t, err)

	token, err := codec.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, s.Token, token)
}

func TestCodecRejects(t *testing.T) {
	now := time.Now()
	codec := NewCodec([]byte("secret"), DefaultTTL)
	valid, err := codec.Encode(New(now))
	require.NoError(t, err)

	otherKey, err := NewCodec([]byte("other"), DefaultTTL).Encode(New(now))
	require.NoError(t, err)

	expired, err := codec.Encode(New(now.Add(-25 * time.Hour)))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "token",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tt := []struct {
		name  string
		value string
		want  error
	}{
		{name: "garbage", value: "not-a-token", want: ErrInvalidToken},
		{name: "tampered", value: tamper(valid, otherKey), want: ErrInvalidToken},
		{name: "other key", value: otherKey, want: ErrInvalidToken},
		{name: "none alg", value: noneAlg, want: ErrInvalidToken},
		{name: "missing id", value: noID, want: ErrInvalidToken},
		{name: "expired", value: expired, want: ErrExpired},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(tc.value)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// tamper swaps the payload of value with the one of donor, keeping the
// original signature.
func tamper(value, donor string) string {
	parts := strings.Split(value, ".")
	parts[1] = strings.Split(donor, ".")[1]
	return strings.Join(parts, ".")
}
