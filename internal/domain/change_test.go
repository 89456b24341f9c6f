package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Record(t *testing.T) {
	tests := []struct {
		name   string
		frame  string
		want   string
		wantOK bool
	}{
		{
			name:   "nested",
			frame:  `{"event":"postgres_changes","payload":{"data":{"type":"INSERT","record":{"id":1}}}}`,
			want:   `{"id":1}`,
			wantOK: true,
		},
		{
			name:   "flat",
			frame:  `{"event":"INSERT","payload":{"type":"INSERT","record":{"id":2}}}`,
			want:   `{"id":2}`,
			wantOK: true,
		},
		{
			name:  "reply",
			frame: `{"event":"phx_reply","payload":{"status":"ok","response":{}}}`,
		},
		{
			name:  "null record",
			frame: `{"event":"postgres_changes","payload":{"data":{"type":"DELETE","record":null}}}`,
		},
		{
			name:  "non-object payload",
			frame: `{"event":"x","payload":[1]}`,
		},
		{
			name:  "no payload",
			frame: `[1,2]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.frame))
			require.NoError(t, err)

			rec, ok := msg.Record()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.JSONEq(t, tt.want, string(rec))
			}
		})
	}
}
