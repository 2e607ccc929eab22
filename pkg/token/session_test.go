package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbiq/biq-go/pkg/ident"
	"github.com/qbiq/biq-go/pkg/wire"
)

func TestSessionDecode(t *testing.T) {
	doc := `{
		"token": "abc",
		"userid": "0b5ef1f0-8a5d-4f7f-9b0e-5b7f3f0e2a11",
		"created": 100, "updated": 200, "idle": 60,
		"useragent": "biq-ios/3.1"
	}`
	s, err := wire.Decode[Session](wire.JSON(), []byte(doc))
	require.NoError(t, err)

	acct, ok := s.Account()
	require.True(t, ok)
	assert.Equal(t, ident.MustParseID("0b5ef1f0-8a5d-4f7f-9b0e-5b7f3f0e2a11"), acct)
	assert.Nil(t, s.Data)
	assert.Nil(t, s.IPAddress)
	require.NotNil(t, s.UserAgent)
	assert.Equal(t, "biq-ios/3.1", *s.UserAgent)

	assert.False(t, s.IdleExpired(time.Unix(260, 0)))
	assert.True(t, s.IdleExpired(time.Unix(261, 0)))
}

func TestSessionWithoutUser(t *testing.T) {
	s, err := wire.Decode[Session](wire.JSON(), []byte(`{"token":"t","created":1,"updated":1,"idle":0}`))
	require.NoError(t, err)

	_, ok := s.Account()
	assert.False(t, ok)
	assert.False(t, s.IdleExpired(time.Unix(1_000_000, 0)))
}

func TestSessionMissingToken(t *testing.T) {
	_, err := wire.Decode[Session](wire.JSON(), []byte(`{"created":1,"updated":1,"idle":0}`))
	assert.ErrorIs(t, err, wire.ErrMalformed)
}
