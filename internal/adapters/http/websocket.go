package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/tripmap/internal/adapters/nats"
	"github.com/samirrijal/tripmap/internal/core/domain"
	"github.com/samirrijal/tripmap/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to channels.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "all" | "data" | "cities" | "trips" | "maps"
}

// wsEvent wraps a relayed NATS message.
type wsEvent struct {
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

// channelSubjects maps client channel names to NATS subjects.
var channelSubjects = map[string]string{
	"all":    natsadapter.SubjectAll,
	"data":   natsadapter.SubjectDataAll,
	"cities": natsadapter.DataSubject(domain.ChangeCities),
	"trips":  natsadapter.DataSubject(domain.ChangeTrips),
	"maps":   natsadapter.SubjectMapRendered,
}

// WebSocketHandler relays tripmap events from NATS to connected clients.
// Every client starts on the "all" channel and may narrow it with
// {"action":"unsubscribe","channel":"all"} followed by a subscribe.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		logger := slog.Default().With("remote", remoteAddr)

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream not available"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		logger.Info("ws client connected")

		relay := func(msg *nats.Msg) {
			_ = writeJSON(wsEvent{Subject: msg.Subject, Data: json.RawMessage(msg.Data)})
		}

		subs := make(map[string]*nats.Subscription) // channel -> subscription
		sub, err := nc.Subscribe(channelSubjects["all"], relay)
		if err != nil {
			logger.Error("ws default subscribe failed", "error", err)
			return
		}
		subs["all"] = sub

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.Channel == "" {
				m.Channel = "all"
			}
			subject, ok := channelSubjects[m.Channel]
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[m.Channel]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "channel": m.Channel})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[m.Channel] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "channel": m.Channel, "subject": subject})

			case "unsubscribe":
				if s, exists := subs[m.Channel]; exists {
					_ = s.Unsubscribe()
					delete(subs, m.Channel)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "channel": m.Channel})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Channel})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		logger.Info("ws client disconnected")
	}
}
