package iamf

import (
	"github.com/pkg/errors"

	"github.com/AOMediaCodec/iamf-tools/obu"
	"github.com/AOMediaCodec/iamf-tools/pcm"
)

// Errors surfaced by the decoder. The parsing errors are re-exported
// from the obu package so callers can match them without importing it.
//
// ErrInvalidDescriptors, ErrUnexpectedDescriptor, ErrCorruptTemporalUnit
// and ErrCodecFailure poison the decoder: afterwards only Reset (in
// descriptor mode) or destruction are defined. ErrBufferTooSmall,
// ErrDescriptorsNotReady and ErrDecodeAfterEOS are precondition
// failures and leave the decoder untouched.
var (
	ErrInvalidDescriptors   = obu.ErrInvalidDescriptors
	ErrUnexpectedDescriptor = obu.ErrUnexpectedDescriptor
	ErrCorruptTemporalUnit  = obu.ErrCorruptTemporalUnit
	ErrBufferTooSmall       = pcm.ErrBufferTooSmall

	ErrCodecFailure        = errors.New("iamf: substream codec failure")
	ErrDescriptorsNotReady = errors.New("iamf: descriptors not processed yet")
	ErrDecodeAfterEOS      = errors.New("iamf: decode after end of stream")
)
