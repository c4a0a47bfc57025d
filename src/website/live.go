package website

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"github.com/gorilla/websocket"
)

const (
	liveWriteTimeout = 10 * time.Second
	livePingInterval = 30 * time.Second
	livePongTimeout  = 2 * livePingInterval
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     sameOrigin,
}

var (
	liveShutdown     = make(chan struct{})
	liveShutdownOnce sync.Once
)

// Tells every open live feed to close. Registered with the server's shutdown
// hook, since hijacked connections are not tracked by http.Server.
func closeLiveFeeds() {
	liveShutdownOnce.Do(func() {
		close(liveShutdown)
	})
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

type LiveMessage struct {
	Type  string            `json:"type"`
	State StudioAPIResponse `json:"state"`
}

// Streams studio snapshots to an instructor's browser. The current snapshot
// goes out immediately, then one message per change. Slow readers skip
// intermediate snapshots and only see the latest.
func StudioLive(c *RequestContext) ResponseData {
	conn, err := liveUpgrader.Upgrade(c.Res, c.Req, nil)
	if err != nil {
		// Upgrade already wrote an error response.
		c.Logger.Debug().Err(err).Msg("failed to upgrade studio live connection")
		return hijackedResponse()
	}
	defer conn.Close()

	logger := c.Logger.With().Str("remote", conn.RemoteAddr().String()).Logger()
	logger.Debug().Msg("studio live feed opened")
	defer logger.Debug().Msg("studio live feed closed")

	sub := c.Studio.Subscribe()
	defer c.Studio.Unsubscribe(sub)

	// Browsers never send us anything useful, but we have to read to notice
	// close frames and pongs.
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(livePongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongTimeout))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(state authoring.State) error {
		conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		return conn.WriteJSON(LiveMessage{
			Type:  "snapshot",
			State: studioToAPI(state),
		})
	}

	if err := send(c.Studio.Snapshot()); err != nil {
		logger.Debug().Err(err).Msg("failed to send initial snapshot")
		return hijackedResponse()
	}

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case state, ok := <-sub.C:
			if !ok {
				return hijackedResponse()
			}
			if err := send(state); err != nil {
				logger.Debug().Err(err).Msg("failed to send snapshot")
				return hijackedResponse()
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				logger.Debug().Err(oops.New(err, "ping failed")).Msg("dropping studio live feed")
				return hijackedResponse()
			}
		case <-liveShutdown:
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(liveWriteTimeout),
			)
			return hijackedResponse()
		case <-closed:
			return hijackedResponse()
		case <-c.Done():
			return hijackedResponse()
		}
	}
}
