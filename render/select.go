// Package render turns assembled temporal units into per-channel sample
// matrices for a caller-selected reproduction layout: it picks the mix
// presentation and layout, owns the substream codec decoders, mixes the
// decoded elements down to the output sound system, and permutes the
// result into the requested channel convention.
package render

import (
	"github.com/pkg/errors"

	"github.com/AOMediaCodec/iamf-tools/obu"
)

// Ordering selects the channel convention of the rendered output.
type Ordering uint8

const (
	OrderingIAMF    Ordering = 0
	OrderingAndroid Ordering = 1
)

// Request carries the caller's mix constraints. All fields are hints;
// selection always resolves to something present in the descriptors.
type Request struct {
	MixPresentationID *uint32
	OutputLayout      *obu.SoundSystem
	Profiles          []obu.ProfileVersion // empty means any
}

// Selection is the resolved mix presentation and output layout.
type Selection struct {
	Mix    *obu.MixPresentation
	Layout obu.SoundSystem
}

// Per-profile limits on what a mix presentation may contain.
var profileLimits = map[obu.ProfileVersion]struct {
	maxElements int
	maxChannels int
}{
	obu.ProfileSimple:       {1, 16},
	obu.ProfileBase:         {2, 18},
	obu.ProfileBaseEnhanced: {28, 28},
}

func profileSupports(p obu.ProfileVersion, m *obu.MixPresentation, set *obu.DescriptorSet) bool {
	lim, ok := profileLimits[p]
	if !ok {
		return false
	}
	return len(m.AudioElementIDs()) <= lim.maxElements &&
		m.NumChannels(set.AudioElements) <= lim.maxChannels
}

// SelectMix resolves req against the sealed descriptor set.
//
// The algorithm: filter the presentations by the requested profiles,
// take the requested id if it survived or the first survivor otherwise,
// then within that presentation take the requested layout, falling back
// to stereo, falling back to the first layout.
func SelectMix(set *obu.DescriptorSet, req Request) (Selection, error) {
	var survivors []*obu.MixPresentation
	for _, m := range set.MixPresentations {
		if len(req.Profiles) == 0 {
			survivors = append(survivors, m)
			continue
		}
		for _, p := range req.Profiles {
			if profileSupports(p, m, set) {
				survivors = append(survivors, m)
				break
			}
		}
	}
	if len(survivors) == 0 {
		return Selection{}, errors.WithMessage(obu.ErrInvalidDescriptors,
			"render: no mix presentation matches the requested profiles")
	}

	chosen := survivors[0]
	if req.MixPresentationID != nil {
		for _, m := range survivors {
			if m.ID == *req.MixPresentationID {
				chosen = m
				break
			}
		}
	}

	layout, err := selectLayout(chosen, req.OutputLayout)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Mix: chosen, Layout: layout}, nil
}

func selectLayout(m *obu.MixPresentation, requested *obu.SoundSystem) (obu.SoundSystem, error) {
	var systems []obu.SoundSystem
	for _, l := range m.Layouts() {
		if l.Type == obu.LayoutTypeSSConvention {
			systems = append(systems, l.SoundSystem)
		}
	}
	if len(systems) == 0 {
		return 0, errors.WithMessagef(obu.ErrInvalidDescriptors,
			"render: mix presentation %d has no sound-system layout", m.ID)
	}
	if requested != nil {
		for _, ss := range systems {
			if ss == *requested {
				return ss, nil
			}
		}
	}
	for _, ss := range systems {
		if ss == obu.SoundSystemA {
			return ss, nil
		}
	}
	return systems[0], nil
}
