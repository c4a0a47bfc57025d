package website

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLiveMessage(t *testing.T, conn *websocket.Conn) LiveMessage {
	t.Helper()
	var msg LiveMessage
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.Nil(t, conn.ReadJSON(&msg))
	return msg
}

func TestStudioLive(t *testing.T) {
	studio := newTestStudio()
	srv := newTestServer(t, testInstructor, studio, nil)
	wsUrl := "ws" + strings.TrimPrefix(srv.URL, "http") + "/studio/live"

	conn, res, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	require.Nil(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, res.StatusCode)

	first := readLiveMessage(t, conn)
	assert.Equal(t, "snapshot", first.Type)
	assert.Empty(t, first.State.Courses)

	// The subscription is registered before the first snapshot is sent.
	assert.Equal(t, 1, studio.NumSubscribers())

	_, _, err = studio.CreateCourse(context.Background(), authoring.NewCourse{Title: "Seerah"})
	require.Nil(t, err)

	update := readLiveMessage(t, conn)
	if assert.Len(t, update.State.Courses, 1) {
		assert.Equal(t, "Seerah", update.State.Courses[0].Title)
	}

	conn.Close()
	assert.Eventually(t, func() bool {
		return studio.NumSubscribers() == 0
	}, 5*time.Second, 10*time.Millisecond, "closing the socket should unsubscribe")
}

func TestStudioLiveRejectsOtherOrigins(t *testing.T) {
	srv := newTestServer(t, testInstructor, nil, nil)
	wsUrl := "ws" + strings.TrimPrefix(srv.URL, "http") + "/studio/live"

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, res, err := websocket.DefaultDialer.Dial(wsUrl, header)
	assert.NotNil(t, err)
	if assert.NotNil(t, res) {
		assert.Equal(t, http.StatusForbidden, res.StatusCode)
	}
}

func TestStudioLiveNeedsAnAuthor(t *testing.T) {
	srv := newTestServer(t, testStudent, nil, nil)
	wsUrl := "ws" + strings.TrimPrefix(srv.URL, "http") + "/studio/live"

	_, res, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	assert.NotNil(t, err)
	if assert.NotNil(t, res) {
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	}
}

func TestSameOrigin(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://nurpath.test/studio/live", nil)
	assert.True(t, sameOrigin(req))

	req.Header.Set("Origin", "http://nurpath.test")
	assert.True(t, sameOrigin(req))

	req.Header.Set("Origin", "http://elsewhere.test")
	assert.False(t, sameOrigin(req))
}
