package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/classify"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/session"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/store"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/testdata"
)

func dialPredict(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/predict"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame []byte) session.Response {
	t.Helper()

	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("sending frame: %v", err)
	}
	var resp session.Response
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return resp
}

func waitForCount(t *testing.T, registry *session.Registry, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if registry.Count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("registry count never reached %d, still %d", want, registry.Count())
}

func TestPredict_StreamingFlow(t *testing.T) {
	const seqLen = 5

	classifier := classify.NewMockClassifier(testLabels)
	classifier.SetProbs([]float32{0.75, 0.125, 0.125})

	registry := newTestRegistry(session.Config{
		SequenceLength:  seqLen,
		SmoothingWindow: 2,
		Threshold:       0.6,
	}, classifier)

	tmpDir := t.TempDir()
	st, err := store.New(tmpDir + "/test.db")
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	ts := httptest.NewServer(New(Config{Store: st, Registry: registry, Log: quietLogger()}))
	defer ts.Close()

	conn := dialPredict(t, ts)
	frame := testdata.JPEGFrame(64, 48)

	// The window needs seqLen frames before any decision is produced.
	for i := 0; i < seqLen-1; i++ {
		resp := sendFrame(t, conn, frame)
		if resp.Ready {
			t.Fatalf("frame %d: ready before the window filled", i+1)
		}
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 active session mid-stream, got %d", registry.Count())
	}

	resp := sendFrame(t, conn, frame)
	if !resp.Ready {
		t.Fatal("no decision once the window filled")
	}
	if resp.PredictedAction != "ayubowan" {
		t.Errorf("PredictedAction = %q, want %q", resp.PredictedAction, "ayubowan")
	}
	if resp.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", resp.Confidence)
	}
	if len(resp.Probs) != len(testLabels) {
		t.Errorf("expected full distribution, got %v", resp.Probs)
	}

	// Every frame from here on slides the window and yields a decision.
	resp = sendFrame(t, conn, frame)
	if !resp.Ready {
		t.Error("window stopped sliding after first decision")
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	// The server goroutine tears the session down on its way out.
	waitForCount(t, registry, 0)

	recs, err := st.Recognitions().ListRecent("", 10)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recorded recognitions, got %d", len(recs))
	}
	if recs[0].Label != "ayubowan" {
		t.Errorf("recorded label = %q, want %q", recs[0].Label, "ayubowan")
	}

	sess, err := st.Sessions().GetByID(recs[0].SessionID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if sess.EndedAt == nil {
		t.Error("session not finished after disconnect")
	}
	if sess.Frames != seqLen+1 {
		t.Errorf("session frames = %d, want %d", sess.Frames, seqLen+1)
	}
}

func TestPredict_TextMessagesIgnored(t *testing.T) {
	registry := newTestRegistry(session.Config{SequenceLength: 2},
		classify.NewMockClassifier(testLabels))

	ts := httptest.NewServer(New(Config{Registry: registry, Log: quietLogger()}))
	defer ts.Close()

	conn := dialPredict(t, ts)
	defer conn.Close()

	// Text frames are skipped without a reply; the next binary frame still
	// gets its response.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
		t.Fatalf("sending text message: %v", err)
	}
	resp := sendFrame(t, conn, testdata.JPEGFrame(64, 48))
	if resp.Ready {
		t.Error("a single binary frame cannot fill the window")
	}
}

func TestPredict_MalformedFrameKeepsSessionAlive(t *testing.T) {
	registry := newTestRegistry(session.Config{SequenceLength: 2},
		classify.NewMockClassifier(testLabels))

	ts := httptest.NewServer(New(Config{Registry: registry, Log: quietLogger()}))
	defer ts.Close()

	conn := dialPredict(t, ts)
	defer conn.Close()

	resp := sendFrame(t, conn, []byte("not a jpeg"))
	if resp.Ready {
		t.Error("garbage payload produced a decision")
	}

	// The connection survives and valid frames still count.
	frame := testdata.JPEGFrame(64, 48)
	sendFrame(t, conn, frame)
	resp = sendFrame(t, conn, frame)
	if !resp.Ready {
		t.Error("session did not recover after a malformed frame")
	}
}

func TestPredict_IdleTimeoutReapsSession(t *testing.T) {
	registry := newTestRegistry(session.Config{SequenceLength: 2},
		classify.NewMockClassifier(testLabels))

	ts := httptest.NewServer(New(Config{
		Registry:    registry,
		Log:         quietLogger(),
		IdleTimeout: 150 * time.Millisecond,
	}))
	defer ts.Close()

	conn := dialPredict(t, ts)
	defer conn.Close()

	// An active client is unaffected: the deadline is re-armed per frame.
	sendFrame(t, conn, testdata.JPEGFrame(64, 48))
	if registry.Count() != 1 {
		t.Fatalf("expected 1 active session, got %d", registry.Count())
	}

	// Then the client goes quiet and the server reaps the session.
	waitForCount(t, registry, 0)
}

func TestPredict_ConcurrentClients(t *testing.T) {
	classifier := classify.NewMockClassifier(testLabels)
	classifier.SetProbs([]float32{0.75, 0.125, 0.125})

	registry := newTestRegistry(session.Config{SequenceLength: 3, SmoothingWindow: 2}, classifier)

	ts := httptest.NewServer(New(Config{Registry: registry, Log: quietLogger()}))
	defer ts.Close()

	const clients = 4
	conns := make([]*websocket.Conn, clients)
	for i := range conns {
		conns[i] = dialPredict(t, ts)
	}

	frame := testdata.JPEGFrame(64, 48)

	// Interleave: one frame per client per round. Window progress is per
	// session, so every client becomes ready on its own third frame.
	for round := 0; round < 3; round++ {
		for i, conn := range conns {
			resp := sendFrame(t, conn, frame)
			wantReady := round == 2
			if resp.Ready != wantReady {
				t.Errorf("client %d round %d: ready = %v, want %v", i, round, resp.Ready, wantReady)
			}
		}
	}

	if registry.Count() != clients {
		t.Errorf("expected %d active sessions, got %d", clients, registry.Count())
	}

	for _, conn := range conns {
		conn.Close()
	}
	waitForCount(t, registry, 0)
}
