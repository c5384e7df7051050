package classify

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/feature"
)

// ModelClassifier implements Classifier using a Python subprocess running
// the trained LSTM model. Unlike the extractor bridge it starts eagerly:
// a missing or broken model should fail the process at startup, not on the
// first client's fortieth frame.
//
// Protocol: on startup the service emits one JSON metadata line naming its
// classes and expected input shape. Per prediction, the bridge writes a
// 4-byte big-endian payload length followed by the window flattened to
// little-endian float32 values (rows * feature.Dim), and reads back one
// JSON line {"probs": [...]}.
type ModelClassifier struct {
	config Config
	labels []string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	mu     sync.Mutex
	closed bool
}

type serviceMetadata struct {
	Classes        []string `json:"classes"`
	SequenceLength int      `json:"sequence_length"`
	FeatureDim     int      `json:"feature_dim"`
}

// NewModelClassifier starts the classifier service and performs the
// metadata handshake.
func NewModelClassifier(config Config) (*ModelClassifier, error) {
	if config.ScriptPath == "" {
		config.ScriptPath = findClassifierScript()
	}
	if config.ScriptPath == "" {
		return nil, fmt.Errorf("classifier_service.py not found")
	}

	pythonPath := findVenvPython()
	if pythonPath == "" {
		pythonPath = "python3"
	}

	args := []string{config.ScriptPath}
	if config.ModelPath != "" {
		args = append(args, "--model", config.ModelPath)
	}
	if config.LabelsPath != "" {
		args = append(args, "--labels", config.LabelsPath)
	}
	if config.SequenceLength > 0 {
		args = append(args, "--sequence-length", strconv.Itoa(config.SequenceLength))
	}

	cmd := exec.Command(pythonPath, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start classifier service: %w", err)
	}

	stdout := bufio.NewReader(stdoutPipe)

	// Metadata handshake
	line, err := stdout.ReadString('\n')
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	meta, err := parseMetadata([]byte(line))
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, err
	}
	if config.SequenceLength > 0 && meta.SequenceLength != config.SequenceLength {
		cmd.Process.Kill()
		cmd.Wait()
		return nil, fmt.Errorf("model sequence length %d does not match configured %d",
			meta.SequenceLength, config.SequenceLength)
	}

	return &ModelClassifier{
		config: config,
		labels: meta.Classes,
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
	}, nil
}

// Predict scores one complete window. Access is serialized; concurrent
// sessions queue on the bridge without touching each other's window state.
func (c *ModelClassifier) Predict(window []feature.Vector) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("classifier is closed")
	}

	payload := make([]byte, 4+len(window)*feature.Dim*4)
	binary.BigEndian.PutUint32(payload, uint32(len(window)*feature.Dim*4))

	off := 4
	for _, vec := range window {
		if len(vec) != feature.Dim {
			return nil, fmt.Errorf("feature vector has %d values, want %d", len(vec), feature.Dim)
		}
		for _, f := range vec {
			binary.LittleEndian.PutUint32(payload[off:], math.Float32bits(f))
			off += 4
		}
	}

	if _, err := c.stdin.Write(payload); err != nil {
		return nil, fmt.Errorf("write window: %w", err)
	}

	line, err := c.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Probs []float32 `json:"probs"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if len(response.Probs) != len(c.labels) {
		return nil, fmt.Errorf("got %d probabilities for %d labels", len(response.Probs), len(c.labels))
	}

	return response.Probs, nil
}

// Labels returns the class list reported by the service at startup.
func (c *ModelClassifier) Labels() []string {
	return c.labels
}

// Close shuts down the Python process.
func (c *ModelClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.stdin != nil {
		c.stdin.Close()
	}
	return c.cmd.Wait()
}

// parseMetadata decodes and validates the startup handshake line.
func parseMetadata(line []byte) (*serviceMetadata, error) {
	var meta serviceMetadata
	if err := json.Unmarshal(line, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if len(meta.Classes) == 0 {
		return nil, fmt.Errorf("classifier service reported no classes")
	}
	if meta.FeatureDim != 0 && meta.FeatureDim != feature.Dim {
		return nil, fmt.Errorf("model feature dim %d does not match %d", meta.FeatureDim, feature.Dim)
	}
	return &meta, nil
}

func findClassifierScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/classifier_service.py",
		"../scripts/classifier_service.py",
		filepath.Join(execDir, "scripts/classifier_service.py"),
		filepath.Join(os.Getenv("HOME"), ".sslms/scripts/classifier_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	execDir := filepath.Dir(execPath)

	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
		filepath.Join(execDir, "venv/bin/python"),
		filepath.Join(os.Getenv("HOME"), ".sslms/venv/bin/python"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
