// Package iamf implements an iterative IAMF decoder core: callers push
// arbitrary byte chunks of an IA sequence and pull rendered PCM frames
// as temporal units complete. Parsing, codec decoding, rendering and
// serialisation live in the obu, codec, render and pcm subpackages;
// this package owns the state machine tying them together.
package iamf

import (
	"github.com/AOMediaCodec/iamf-tools/obu"
	"github.com/AOMediaCodec/iamf-tools/pcm"
	"github.com/AOMediaCodec/iamf-tools/render"
)

// SoundSystem identifies a loudspeaker configuration, ITU-R BS.2051
// systems A through J plus the IAMF extensions.
type SoundSystem = obu.SoundSystem

const (
	SoundSystemA  = obu.SoundSystemA // stereo
	SoundSystemB  = obu.SoundSystemB
	SoundSystemC  = obu.SoundSystemC
	SoundSystemD  = obu.SoundSystemD
	SoundSystemE  = obu.SoundSystemE
	SoundSystemF  = obu.SoundSystemF
	SoundSystemG  = obu.SoundSystemG
	SoundSystemH  = obu.SoundSystemH
	SoundSystemI  = obu.SoundSystemI
	SoundSystemJ  = obu.SoundSystemJ
	SoundSystem10 = obu.SoundSystem10
	SoundSystem11 = obu.SoundSystem11
	SoundSystem12 = obu.SoundSystem12 // mono
	SoundSystem13 = obu.SoundSystem13
)

// ProfileVersion is an IAMF profile.
type ProfileVersion = obu.ProfileVersion

const (
	ProfileSimple       = obu.ProfileSimple
	ProfileBase         = obu.ProfileBase
	ProfileBaseEnhanced = obu.ProfileBaseEnhanced
)

// OutputSampleType selects the integer width of serialised samples.
type OutputSampleType = pcm.SampleType

const (
	Int16LittleEndian = pcm.Int16LittleEndian
	Int32LittleEndian = pcm.Int32LittleEndian
)

// ChannelOrdering selects the channel convention of the output.
type ChannelOrdering = render.Ordering

const (
	OrderingIAMF    = render.OrderingIAMF
	OrderingAndroid = render.OrderingAndroid
)

// RequestedMix carries the caller's mix constraints. Both fields are
// hints; selection always resolves to something present in the stream.
type RequestedMix struct {
	MixPresentationID *uint32
	OutputLayout      *SoundSystem
}

// SelectedMix records how a RequestedMix was resolved.
type SelectedMix struct {
	MixPresentationID uint32
	OutputLayout      SoundSystem
}

// Settings configures a Decoder at creation time. The zero value asks
// for any mix, any profile, IAMF channel ordering and 32-bit samples.
type Settings struct {
	RequestedMix             RequestedMix
	RequestedProfileVersions []ProfileVersion
	ChannelOrdering          ChannelOrdering
	OutputSampleType         OutputSampleType
}

func (s *Settings) sampleType() pcm.SampleType {
	if s.OutputSampleType == 0 {
		return Int32LittleEndian
	}
	return s.OutputSampleType
}

func (s *Settings) renderRequest() render.Request {
	return render.Request{
		MixPresentationID: s.RequestedMix.MixPresentationID,
		OutputLayout:      s.RequestedMix.OutputLayout,
		Profiles:          s.RequestedProfileVersions,
	}
}
