// Package e2e exercises the assembled service end to end: application
// wiring, WebSocket streaming, the HTTP API, and persistence, with the
// external model services mocked out.
package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/app"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/config"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/server"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/session"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/testdata"
)

const seqLen = 5

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		Addr:            ":0",
		DBPath:          filepath.Join(t.TempDir(), "e2e.db"),
		SequenceLength:  seqLen,
		SmoothingWindow: 3,
		Threshold:       0.6,
		MockModel:       true,
	}

	application, err := app.New(cfg, log)
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(application.Close)
	return application
}

func TestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}

	application := newTestApp(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	ts := httptest.NewServer(server.New(server.Config{
		Store:    application.Store(),
		Registry: application.Registry(),
		Log:      log,
	}))
	defer ts.Close()

	t.Run("label catalog synced from classifier", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/labels")
		if err != nil {
			t.Fatalf("GET /api/labels: %v", err)
		}
		defer resp.Body.Close()

		var labels []struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
			t.Fatalf("decoding labels: %v", err)
		}
		if len(labels) == 0 {
			t.Fatal("label catalog is empty after startup sync")
		}
		if labels[0].Name != "ayubowan" {
			t.Errorf("first label = %q, want %q", labels[0].Name, "ayubowan")
		}
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/predict"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}

	frame := testdata.JPEGFrame(64, 48)
	var last session.Response

	for i := 0; i < seqLen; i++ {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			t.Fatalf("sending frame %d: %v", i+1, err)
		}
		if err := conn.ReadJSON(&last); err != nil {
			t.Fatalf("reading response %d: %v", i+1, err)
		}
		wantReady := i == seqLen-1
		if last.Ready != wantReady {
			t.Fatalf("frame %d: ready = %v, want %v", i+1, last.Ready, wantReady)
		}
	}

	// The mock classifier is uniform over the dev labels, so no class clears
	// the confidence threshold and the gate holds.
	if last.PredictedAction != session.Undetermined {
		t.Errorf("PredictedAction = %q, want the undetermined sentinel", last.PredictedAction)
	}
	if len(last.Probs) == 0 {
		t.Error("ready response carries no distribution")
	}

	t.Run("health reports the active session", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health: %v", err)
		}
		defer resp.Body.Close()

		var health map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
			t.Fatalf("decoding health: %v", err)
		}
		if health["status"] != "ok" {
			t.Errorf("status = %v, want ok", health["status"])
		}
		if health["active_sessions"] != float64(1) {
			t.Errorf("active_sessions = %v, want 1", health["active_sessions"])
		}
	})

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for application.Registry().Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := application.Registry().Count(); got != 0 {
		t.Fatalf("sessions still registered after disconnect: %d", got)
	}

	t.Run("gated decisions are not persisted", func(t *testing.T) {
		recs, err := application.Store().Recognitions().ListRecent("", 10)
		if err != nil {
			t.Fatalf("ListRecent() error = %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("undetermined decisions must not be persisted, got %d rows", len(recs))
		}
	})
}
