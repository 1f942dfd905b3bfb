package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientEvent(t *testing.T) {
	tcases := []struct {
		name string
		data string
		want interface{}
		err  string
	}{
		{
			name: "join",
			data: `{"type":"join-room","payload":{"roomId":"r1"}}`,
			want: &joinRoomEvent{RoomID: "r1"},
		},
		{
			name: "leave",
			data: `{"type":"leave-room","payload":{"roomId":"r1"}}`,
			want: &leaveRoomEvent{RoomID: "r1"},
		},
		{
			name: "empty code is allowed",
			data: `{"type":"code-change","payload":{"roomId":"r1","code":""}}`,
			want: &codeChangeEvent{RoomID: "r1"},
		},
		{
			name: "offer",
			data: `{"type":"webrtc-offer","payload":{"roomId":"r1","to":"s2","sdp":"v=0"}}`,
			want: &signalEvent{Kind: "webrtc-offer", RoomID: "r1", To: "s2", SDP: []byte(`"v=0"`)},
		},
		{
			name: "candidate",
			data: `{"type":"ice-candidate","payload":{"roomId":"r1","candidate":{"candidate":"c"}}}`,
			want: &signalEvent{Kind: "ice-candidate", RoomID: "r1", Candidate: []byte(`{"candidate":"c"}`)},
		},
		{name: "not json", data: `nope`, err: "malformed message"},
		{name: "missing payload", data: `{"type":"join-room"}`, err: "payload is required"},
		{name: "null payload", data: `{"type":"join-room","payload":null}`, err: "payload is required"},
		{name: "wrong payload shape", data: `{"type":"join-room","payload":"r1"}`, err: "malformed payload"},
		{name: "missing room", data: `{"type":"code-change","payload":{"code":"x"}}`, err: "roomId is required"},
		{name: "answer without sdp", data: `{"type":"webrtc-answer","payload":{"roomId":"r1"}}`, err: "sdp is required"},
		{name: "candidate without body", data: `{"type":"ice-candidate","payload":{"roomId":"r1","candidate":null}}`, err: "candidate is required"},
		{name: "unknown", data: `{"type":"room-joined","payload":{}}`, err: "unknown event type"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseClientEvent([]byte(tc.data))
			if tc.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
