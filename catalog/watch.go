package catalog

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// Feed event types.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event is one catalog change pushed by the backend feed.
type Event struct {
	Type    string  `json:"type"`
	Product Product `json:"product"`
}

// FeedURL maps the backend root onto its websocket feed endpoint.
func FeedURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/api/products/feed"
}

// Watch subscribes to the catalog feed and calls fn for each event until ctx
// is done or the connection drops. It returns nil when ctx ends the watch.
func Watch(ctx context.Context, wsURL string, fn func(Event)) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		if resp != nil {
			return errors.Wrapf(err, "dial feed (status %d)", resp.StatusCode)
		}
		return errors.Wrap(err, "dial feed")
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "read feed")
		}
		fn(ev)
	}
}
