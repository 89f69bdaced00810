//go:build !cgo

package classifier

import "errors"

var errNoCgo = errors.New("classifier: built without cgo, onnx runtime unavailable")

// ONNX is a stub in non-cgo builds; LoadONNX always fails and the caller
// is expected to run without the model path.
type ONNX struct{}

func LoadONNX(modelPath, libPath string) (*ONNX, error) { return nil, errNoCgo }

func (m *ONNX) InputSize() int                          { return DefaultInputSize }
func (m *ONNX) Classify([]float32) ([]float32, error)   { return nil, errNoCgo }
func (m *ONNX) Close()                                  {}
