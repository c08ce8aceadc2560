package ws

import (
	"encoding/json"
	"testing"

	"github.com/cwrk-planet/presence-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraStreamPayload_HasFrame(t *testing.T) {
	cases := map[string]bool{
		`{"user_id":"u1"}`:                   false,
		`{"user_id":"u1","frame":null}`:      false,
		`{"user_id":"u1","frame":""}`:        false,
		`{"user_id":"u1","frame":0}`:         false,
		`{"user_id":"u1","frame":false}`:     false,
		`{"user_id":"u1","frame":[ ]}`:       false,
		`{"user_id":"u1","frame":{}}`:        false,
		`{"user_id":"u1","frame":"AAEC"}`:    true,
		`{"user_id":"u1","frame":[1]}`:       true,
		`{"user_id":"u1","frame":{"w":640}}`: true,
		`{"user_id":"u1","frame":7}`:         true,
	}
	for raw, want := range cases {
		var p CameraStreamPayload
		require.NoError(t, json.Unmarshal([]byte(raw), &p), raw)
		assert.Equal(t, want, p.HasFrame(), raw)
	}
}

func TestPayloadNormalize(t *testing.T) {
	j := JoinChatPayload{UserID: "u1"}
	require.NoError(t, j.normalize())
	assert.Equal(t, "general", j.RoomID)
	assert.Equal(t, "Anonymous", j.Username)

	assert.ErrorIs(t, (&JoinChatPayload{RoomID: "r"}).normalize(), domain.ErrInvalidPayload)
	assert.ErrorIs(t, (&SendMessagePayload{UserID: "u1"}).normalize(), domain.ErrInvalidPayload)
	assert.ErrorIs(t, (&CameraStreamPayload{}).normalize(), domain.ErrInvalidPayload)

	err := decodePayload(nil, &j)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	err = decodePayload(json.RawMessage(`{"user_id":42}`), &j)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
