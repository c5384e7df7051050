package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/session"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Frontend may be served from another origin
	},
}

// PredictHandler runs the streaming recognition loop for one WebSocket
// client per connection. Each connection gets its own registry session and
// its own goroutine (the standard library hands every upgrade request a
// fresh one), which is the single owner of that session's state: frames are
// processed strictly in arrival order, one at a time.
type PredictHandler struct {
	registry    *session.Registry
	store       *store.Store
	log         *logrus.Logger
	idleTimeout time.Duration
}

// NewPredictHandler creates a PredictHandler over the given registry. The
// store is optional; when present, connections and admitted recognitions
// are logged to it.
func NewPredictHandler(r *session.Registry, st *store.Store, log *logrus.Logger, idle time.Duration) *PredictHandler {
	return &PredictHandler{
		registry:    r,
		store:       st,
		log:         log,
		idleTimeout: idle,
	}
}

// ServeHTTP upgrades the connection and processes frames until the client
// goes away. Registry removal runs on every exit path: normal close, read
// error, write error, or idle timeout all funnel through the same defer.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sess, err := h.registry.Create()
	if err != nil {
		h.log.WithError(err).Error("cannot create session")
		return
	}

	log := h.log.WithField("client_id", sess.ID())
	log.Info("client connected")

	if h.store != nil {
		if err := h.store.Sessions().Start(sess.ID(), time.Now()); err != nil {
			log.WithError(err).Warn("recording session start")
		}
	}

	defer func() {
		h.registry.Remove(sess.ID())
		if h.store != nil {
			if err := h.store.Sessions().Finish(sess.ID(), time.Now(), sess.Frames()); err != nil {
				log.WithError(err).Warn("recording session end")
			}
		}
		log.WithField("frames", sess.Frames()).Info("client disconnected")
	}()

	for {
		if h.idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(h.idleTimeout)); err != nil {
				log.WithError(err).Debug("setting read deadline")
				return
			}
		}

		messageType, data, err := conn.ReadMessage()
		if err != nil {
			// Transport errors are terminal for this session only.
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("read failed")
			}
			return
		}

		// Frames arrive as binary JPEG payloads; anything else is ignored.
		if messageType != websocket.BinaryMessage {
			continue
		}

		resp := sess.ProcessFrame(data)

		if h.store != nil && resp.Ready && resp.PredictedAction != session.Undetermined {
			rec := &store.Recognition{
				SessionID:  sess.ID(),
				Label:      resp.PredictedAction,
				Confidence: resp.Confidence,
				Frame:      sess.Frames(),
			}
			if err := h.store.Recognitions().Create(rec); err != nil {
				log.WithError(err).Warn("recording recognition")
			}
		}

		if err := conn.WriteJSON(resp); err != nil {
			log.WithError(err).Debug("write failed")
			return
		}
	}
}
