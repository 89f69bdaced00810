// Package encoder writes scored call audio out as FLAC evidence
// snippets. Lossless on purpose: a snippet may need to be re-analyzed,
// so the amplitudes the scorer saw must survive intact.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}
