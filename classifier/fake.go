package classifier

// FakeClassifier returns a canned confidence vector for every window.
// Used by tests, the doctor, and demo runs without a real model.
type FakeClassifier struct {
	conf []float32
	size int
	err  error
}

// NewFake builds a classifier whose argmax is always class. A negative
// class yields a uniform vector (argmax 0 by first occurrence).
func NewFake(class int) *FakeClassifier {
	conf := make([]float32, NumClasses)
	if class >= 0 && class < NumClasses {
		conf[class] = 1.0
	}
	return &FakeClassifier{conf: conf, size: DefaultInputSize}
}

// NewFailingFake builds a classifier whose Classify always returns err.
func NewFailingFake(err error) *FakeClassifier {
	return &FakeClassifier{size: DefaultInputSize, err: err}
}

func (f *FakeClassifier) InputSize() int { return f.size }

func (f *FakeClassifier) Classify([]float32) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	conf := make([]float32, len(f.conf))
	copy(conf, f.conf)
	return conf, nil
}
