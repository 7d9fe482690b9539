// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import "github.com/goki/ki/kit"

// CompType classifies compartments.  The type determines the default
// geometry and channel-density values a template assigns.
type CompType int

//go:generate stringer -type=CompType

var KiT_CompType = kit.Enums.AddEnum(CompTypeN, kit.NotBitFlag, nil)

func (ev CompType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *CompType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Soma is the cell body -- always the single tree root.
	Soma CompType = iota

	// BasalDend is a basal dendritic segment.
	BasalDend

	// ApicalDend is an apical dendritic segment (trunk or tuft).
	ApicalDend

	// Axon is an axonal / axon-initial-segment compartment -- the first
	// axon compartment is the spike-initiation site.
	Axon

	CompTypeN
)
