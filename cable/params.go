// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"github.com/ccnsim/cable/chans"
	"github.com/ccnsim/cable/morph"
)

//////////////////////////////////////////////////////////////////////////////////////
//  DensityParams

// DensityParams are the default channel conductance densities (mS/cm^2) per
// compartment type.  The axon initial segment carries the high sodium density
// that makes it the spike-initiation site; dendrites carry the calcium and
// NMDA channels, with only weak fast spiking currents.
type DensityParams struct {
	Soma   chans.Chans `view:"inline" desc:"soma densities -- classic squid-axon Na/Kdr/leak plus a small Ca"`
	Basal  chans.Chans `view:"inline" desc:"basal dendrite densities"`
	Apical chans.Chans `view:"inline" desc:"apical dendrite densities -- strongest Ca and NMDA"`
	Axon   chans.Chans `view:"inline" desc:"axon / AIS densities -- high Na for spike initiation"`
}

func (dp *DensityParams) Defaults() {
	dp.Soma.SetAll(120, 36, 0.3, 0, 0.3)
	dp.Basal.SetAll(20, 10, 0.5, 0.5, 0.1)
	dp.Apical.SetAll(20, 10, 1, 1, 0.1)
	dp.Axon.SetAll(500, 100, 0, 0, 0.3)
}

func (dp *DensityParams) Update() {
}

// ForType returns the density set for the given compartment type.
func (dp *DensityParams) ForType(t morph.CompType) chans.Chans {
	switch t {
	case morph.BasalDend:
		return dp.Basal
	case morph.ApicalDend:
		return dp.Apical
	case morph.Axon:
		return dp.Axon
	default:
		return dp.Soma
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  SpikeParams

// SpikeParams control spike detection at the spike-initiation compartment:
// an upward threshold crossing emits a spike, and a refractory minimum
// inter-spike interval suppresses immediate re-triggering, mirroring the
// axon initial segment's physiological refractory period.
type SpikeParams struct {
	Thr     float32 `def:"-10" desc:"spike detection threshold (mV) at the spike-initiation compartment"`
	Refract float32 `def:"2" min:"0" desc:"refractory minimum inter-spike interval (ms)"`
	ISITau  float32 `def:"5" min:"1" desc:"time constant (in spikes) for integrating the running average inter-spike interval"`

	ISIDt float32 `view:"-" desc:"rate = 1 / ISITau"`
}

func (sp *SpikeParams) Defaults() {
	sp.Thr = -10
	sp.Refract = 2
	sp.ISITau = 5
	sp.Update()
}

func (sp *SpikeParams) Update() {
	sp.ISIDt = 1 / sp.ISITau
}

// AvgFmISI updates the running-average inter-spike interval from the
// latest interval value.
func (sp *SpikeParams) AvgFmISI(avg *float32, isi float32) {
	if *avg <= 0 {
		*avg = isi
	} else if isi < 0.8**avg {
		*avg = isi // significantly faster: take it directly
	} else {
		*avg += sp.ISIDt * (isi - *avg)
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Params

// Params bundles all of the neuron-level parameters: channel kinetics,
// per-type channel densities, and spike detection.
type Params struct {
	Chans chans.Params  `view:"no-inline" desc:"channel kinetics constants, shared across all compartments"`
	Dens  DensityParams `view:"no-inline" desc:"per-compartment-type channel densities"`
	Spike SpikeParams   `view:"inline" desc:"spike detection at the spike-initiation compartment"`
	ErevL float32       `def:"-65" desc:"resting potential (mV) that Init sets all compartments to, with gates at their voltage steady states"`
}

func (pr *Params) Defaults() {
	pr.Chans.Defaults()
	pr.Dens.Defaults()
	pr.Spike.Defaults()
	pr.ErevL = -65
	pr.Update()
}

// Update must be called after any changes to parameters.
func (pr *Params) Update() {
	pr.Chans.Update()
	pr.Dens.Update()
	pr.Spike.Update()
}
