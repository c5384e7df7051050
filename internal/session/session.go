package session

import (
	"errors"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/classify"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/extract"
)

// Defaults matching the trained model configuration.
const (
	DefaultSequenceLength  = 40
	DefaultSmoothingWindow = 12
	DefaultThreshold       = 0.6
)

// Inbound frames are downscaled before extraction; the tracker does not
// need full resolution and the extractor call is the hot path.
const (
	procWidth  = 320
	procHeight = 240
)

// ErrDecode is returned when an inbound payload is not a decodable image.
var ErrDecode = errors.New("cannot decode frame")

// Config holds the per-session pipeline parameters.
type Config struct {
	SequenceLength  int
	SmoothingWindow int
	Threshold       float64
}

func (c Config) withDefaults() Config {
	if c.SequenceLength <= 0 {
		c.SequenceLength = DefaultSequenceLength
	}
	if c.SmoothingWindow <= 0 {
		c.SmoothingWindow = DefaultSmoothingWindow
	}
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	return c
}

// Response is the per-frame reply sent back over the client's connection.
// While the window is still filling only Ready is present; once full, every
// frame carries the gated decision, the raw top-class confidence, and the
// full distribution for client-side display.
type Response struct {
	Ready           bool               `json:"ready"`
	PredictedAction string             `json:"predicted_action,omitempty"`
	Confidence      float64            `json:"confidence,omitempty"`
	Probs           map[string]float32 `json:"probs,omitempty"`
}

// Session is the server-side state for one client connection: a sliding
// keypoint window, a prediction smoother, a frame counter, and the client's
// own extractor instance (the holistic tracker keeps per-stream state).
//
// A Session has a single owner: the goroutine reading that client's
// connection. Frames are processed strictly in arrival order and no two
// frames of the same session are ever in flight together, so the Session
// itself carries no locks.
type Session struct {
	id         string
	window     *Window
	gate       *Smoother
	extractor  extract.Extractor
	classifier classify.Classifier
	labels     []string
	frames     uint64
	log        *logrus.Entry
}

func newSession(id string, cfg Config, ex extract.Extractor, cl classify.Classifier, log *logrus.Logger) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		id:         id,
		window:     NewWindow(cfg.SequenceLength),
		gate:       NewSmoother(cfg.SmoothingWindow, cfg.Threshold),
		extractor:  ex,
		classifier: cl,
		labels:     cl.Labels(),
		log:        log.WithField("client_id", id),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Frames returns how many frames have been accepted into the window.
func (s *Session) Frames() uint64 {
	return s.frames
}

// ProcessFrame runs the full per-frame pipeline on one inbound payload:
// decode, downscale, extract, buffer, and — once the window is full —
// classify and smooth. Every fault is contained here: a malformed frame or
// a failing collaborator degrades to a not-ready response and the session
// stays live. A skipped frame never advances the window or the counter.
func (s *Session) ProcessFrame(data []byte) Response {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil || img.Empty() {
		if err == nil {
			img.Close()
			err = ErrDecode
		}
		s.log.WithError(err).Warn("skipping undecodable frame")
		return Response{Ready: false}
	}

	small := gocv.NewMat()
	gocv.Resize(img, &small, image.Pt(procWidth, procHeight), 0, 0, gocv.InterpolationLinear)
	img.Close()

	vec, err := s.extractor.Extract(&small)
	small.Close()
	if err != nil {
		s.log.WithError(err).Warn("landmark extraction failed, skipping frame")
		return Response{Ready: false}
	}

	s.window.Push(vec)
	s.frames++

	if !s.window.Full() {
		return Response{Ready: false}
	}

	probs, err := s.classifier.Predict(s.window.Snapshot())
	if err != nil {
		s.log.WithError(err).Warn("classification failed, no decision this frame")
		return Response{Ready: false}
	}

	// A distribution whose maximum is not positive cannot have come from a
	// softmax head; treat it like a wrongly-shaped one. This also keeps the
	// confidence and probs fields present on every ready response.
	idx := classify.Argmax(probs)
	if idx < 0 || idx >= len(s.labels) || probs[idx] <= 0 {
		s.log.WithField("classes", len(probs)).Warn("classifier returned invalid distribution")
		return Response{Ready: false}
	}
	conf := float64(probs[idx])

	decision := Undetermined
	if label, ok := s.gate.Decide(idx, conf); ok {
		decision = s.labels[label]
	}

	return Response{
		Ready:           true,
		PredictedAction: decision,
		Confidence:      conf,
		Probs:           classify.Distribution(s.labels, probs),
	}
}

func (s *Session) close() {
	if err := s.extractor.Close(); err != nil {
		s.log.WithError(err).Warn("closing extractor")
	}
}
