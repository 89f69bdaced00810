// Package classifier loads the optional pre-trained emergency model and
// exposes it through the contract the score engine consumes: a declared
// input width and a 1×width → 1×NumClasses inference call.
package classifier

const (
	// DefaultInputSize is assumed when the model does not declare a
	// usable input shape.
	DefaultInputSize = 784

	// NumClasses is the fixed width of the confidence vector.
	NumClasses = 10
)
