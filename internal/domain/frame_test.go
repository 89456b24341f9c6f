package domain

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settlements = Subscription{Schema: "public", Table: "settlements", Event: "INSERT"}

func TestNewJoinFrame_Golden(t *testing.T) {
	b, err := NewJoinFrame(settlements).Encode()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "join_frame", b)
}

func TestNewHeartbeatFrame_Golden(t *testing.T) {
	b, err := NewHeartbeatFrame().Encode()
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "heartbeat_frame", b)
}

func TestNewJoinFrame_EmbedsSubscription(t *testing.T) {
	sub := Subscription{Schema: "ledger", Table: "credits", Event: "*"}
	f := NewJoinFrame(sub)

	assert.Equal(t, "realtime:ledger-credits-changes", f.Topic)
	assert.Equal(t, EventJoin, f.Event)
	assert.Equal(t, JoinRef, f.Ref)
	assert.Equal(t, JoinRef, f.JoinRef)

	p, ok := f.Payload.(JoinPayload)
	require.True(t, ok)
	assert.Equal(t, []Subscription{sub}, p.Config.PostgresChanges)
	assert.False(t, p.Config.Broadcast.Ack)
	assert.False(t, p.Config.Broadcast.Self)
	assert.Empty(t, p.Config.Presence.Key)
}

func TestHeartbeatFrame_OmitsJoinRef(t *testing.T) {
	b, err := NewHeartbeatFrame().Encode()
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "join_ref")
}

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantErr   error
		wantTopic string
		wantEvent string
	}{
		{
			name:      "postgres change",
			data:      `{"topic":"realtime:public-settlements-changes","event":"postgres_changes","payload":{"data":{"type":"INSERT"}},"ref":null}`,
			wantTopic: "realtime:public-settlements-changes",
			wantEvent: "postgres_changes",
		},
		{
			name:      "heartbeat reply",
			data:      `{"topic":"phoenix","event":"phx_reply","payload":{"status":"ok","response":{}},"ref":"2"}`,
			wantTopic: "phoenix",
			wantEvent: "phx_reply",
		},
		{
			name: "non-object json is forwarded",
			data: `[1,2,3]`,
		},
		{
			name:    "truncated json",
			data:    `{"topic":"phoenix",`,
			wantErr: ErrMalformedFrame,
		},
		{
			name:    "not json",
			data:    `hello`,
			wantErr: ErrMalformedFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTopic, msg.Topic)
			assert.Equal(t, tt.wantEvent, msg.Event)
			assert.JSONEq(t, tt.data, string(msg.Raw))
		})
	}
}

func TestMessage_ReplyStatus(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"join ok", `{"topic":"realtime:public-t-changes","event":"phx_reply","payload":{"status":"ok"},"ref":"1"}`, "ok"},
		{"join rejected", `{"topic":"realtime:public-t-changes","event":"phx_reply","payload":{"status":"error","response":{"reason":"unauthorized"}},"ref":"1"}`, "error"},
		{"not a reply", `{"topic":"realtime:public-t-changes","event":"postgres_changes","payload":{"status":"error"}}`, ""},
		{"reply without payload", `{"topic":"phoenix","event":"phx_reply"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.ReplyStatus())
		})
	}
}
