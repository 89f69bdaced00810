//go:build cgo

package classifier

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNX wraps an onnxruntime session around an emergency-classification
// model taking a 1×inputSize float matrix and returning 1×NumClasses
// confidences.
type ONNX struct {
	session   *ort.DynamicAdvancedSession
	inputSize int
}

// LoadONNX opens the model at modelPath. libPath optionally points at the
// onnxruntime shared library; empty means the platform default.
//
// The input width is read from the second dimension of the model's first
// input; models without a usable shape get DefaultInputSize.
func LoadONNX(modelPath, libPath string) (*ONNX, error) {
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initializing onnx runtime: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reading model metadata: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s declares no inputs or outputs", modelPath)
	}

	inputSize := DefaultInputSize
	if dims := inputs[0].Dimensions; len(dims) >= 2 && dims[1] > 0 {
		inputSize = int(dims[1])
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &ONNX{
		session:   session,
		inputSize: inputSize,
	}, nil
}

// InputSize reports the model's declared input width.
func (m *ONNX) InputSize() int { return m.inputSize }

// Classify runs one inference. The returned slice is owned by the caller.
func (m *ONNX) Classify(features []float32) ([]float32, error) {
	input, err := ort.NewTensor(ort.NewShape(1, int64(len(features))), features)
	if err != nil {
		return nil, fmt.Errorf("creating input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewTensor(ort.NewShape(1, NumClasses), make([]float32, NumClasses))
	if err != nil {
		return nil, fmt.Errorf("creating output tensor: %w", err)
	}
	defer output.Destroy()

	if err := m.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}

	conf := make([]float32, NumClasses)
	copy(conf, output.GetData())
	return conf, nil
}

// Close releases the session. The shared onnxruntime environment stays
// initialized for the process lifetime.
func (m *ONNX) Close() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
