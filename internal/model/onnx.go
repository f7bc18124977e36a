package model

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
	"github.com/jonathan/role-recommender/internal/schemas"
	"github.com/jonathan/role-recommender/internal/types"
	ort "github.com/yalue/onnxruntime_go"
)

// Default tensor names of a classifier exported with zipmap disabled.
const (
	defaultONNXInput  = "input"
	defaultONNXOutput = "probabilities"
)

// ONNXManifest describes the inputs and classes of an exported ONNX classifier.
type ONNXManifest struct {
	Classes  []any    `json:"classes"`
	Features []string `json:"features"`
	Input    string   `json:"input,omitempty"`
	Output   string   `json:"output,omitempty"`
}

// ONNXClassifier runs a classifier through ONNX Runtime. The input row is the
// ordinal encoding of the feature vector as float32, NaN marking missing values.
type ONNXClassifier struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	encoder *Encoder
	classes []any
}

var ortInit sync.Once
var ortInitErr error

// initRuntime initializes the ONNX Runtime environment once per process.
func initRuntime(libraryPath string) error {
	ortInit.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// LoadManifest reads and schema-checks an ONNX manifest.
func LoadManifest(path string) (*ONNXManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Path: path, Message: "manifest not found", Cause: err}
		}
		return nil, &LoadError{Path: path, Message: "failed to read manifest", Cause: err}
	}
	if err := schemas.ValidateDocument(schemas.ONNXManifest, data); err != nil {
		return nil, &LoadError{Path: path, Message: "schema validation failed", Cause: err}
	}
	var m ONNXManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to unmarshal manifest", Cause: err}
	}
	if m.Input == "" {
		m.Input = defaultONNXInput
	}
	if m.Output == "" {
		m.Output = defaultONNXOutput
	}
	return &m, nil
}

// LoadONNX creates a session for modelPath with tensors sized from the manifest.
func LoadONNX(modelPath string, manifest *ONNXManifest, libraryPath string, source OrdinalSource) (*ONNXClassifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, &LoadError{Path: modelPath, Message: "model not found", Cause: err}
	}
	if err := initRuntime(libraryPath); err != nil {
		return nil, &LoadError{Path: modelPath, Message: "failed to initialize onnxruntime", Cause: err}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(manifest.Features))))
	if err != nil {
		return nil, &LoadError{Path: modelPath, Message: "failed to allocate input tensor", Cause: err}
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(manifest.Classes))))
	if err != nil {
		_ = input.Destroy()
		return nil, &LoadError{Path: modelPath, Message: "failed to allocate output tensor", Cause: err}
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{manifest.Input}, []string{manifest.Output},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, &LoadError{Path: modelPath, Message: "failed to create session", Cause: err}
	}

	return &ONNXClassifier{
		session: session,
		input:   input,
		output:  output,
		encoder: NewEncoder(manifest.Features, source),
		classes: append([]any(nil), manifest.Classes...),
	}, nil
}

// Classes returns the class labels in output order.
func (c *ONNXClassifier) Classes() []any {
	return append([]any(nil), c.classes...)
}

// PredictProba runs the session for a single row. Calls are serialized because the
// session's tensors are shared.
func (c *ONNXClassifier) PredictProba(vector types.FeatureVector) ([]float64, error) {
	row := c.encoder.Encode(vector)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil, fmt.Errorf("onnx session is closed")
	}
	in := c.input.GetData()
	for i, v := range row {
		in[i] = float32(v)
	}
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run failed: %w", err)
	}

	out := c.output.GetData()
	proba := make([]float64, len(out))
	for i, v := range out {
		proba[i] = float64(v)
	}
	return proba, nil
}

// Close releases the session and its tensors.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := errors.Join(c.session.Destroy(), c.input.Destroy(), c.output.Destroy())
	c.session = nil
	return err
}
