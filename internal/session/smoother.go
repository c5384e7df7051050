package session

// Undetermined is the sentinel decision returned when a prediction does not
// clear both the confidence threshold and the temporal majority check.
const Undetermined = "..."

// Smoother gates raw classifier predictions with temporal agreement. It
// keeps a bounded FIFO history of recent top-label indices and admits a
// candidate only when its instantaneous confidence clears the threshold AND
// the same label dominates the recent history. A single lucky
// high-confidence frame is not enough to surface a label.
type Smoother struct {
	window    int
	threshold float64
	history   []int
}

// NewSmoother creates a Smoother with the given history size and minimum
// confidence. The threshold comparison is strict (confidence > threshold).
func NewSmoother(window int, threshold float64) *Smoother {
	return &Smoother{
		window:    window,
		threshold: threshold,
		history:   make([]int, 0, window),
	}
}

// Record appends a predicted label index to the history, evicting the
// oldest entry when the history is at capacity.
func (s *Smoother) Record(label int) {
	if len(s.history) >= s.window {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.window-1]
	}
	s.history = append(s.history, label)
}

// Majority returns the most frequent label index in the current history.
// Ties break deterministically in favor of the label whose first occurrence
// is earliest in the history. ok is false when the history is empty.
func (s *Smoother) Majority() (label int, ok bool) {
	if len(s.history) == 0 {
		return 0, false
	}

	counts := make(map[int]int, len(s.history))
	max := 0
	for _, l := range s.history {
		counts[l]++
		if counts[l] > max {
			max = counts[l]
		}
	}

	// Scan in arrival order so a tie resolves to the label whose first
	// occurrence is earliest.
	for _, l := range s.history {
		if counts[l] == max {
			return l, true
		}
	}
	return 0, false
}

// Decide records the candidate and applies the gating policy: the candidate
// is admitted iff confidence > threshold and the candidate equals the
// post-record majority label. ok is false for an undetermined decision.
func (s *Smoother) Decide(candidate int, confidence float64) (label int, ok bool) {
	s.Record(candidate)

	majority, has := s.Majority()
	if !has {
		return 0, false
	}
	if confidence > s.threshold && majority == candidate {
		return candidate, true
	}
	return 0, false
}

// HistoryLen returns the number of predictions currently in the history.
func (s *Smoother) HistoryLen() int {
	return len(s.history)
}
