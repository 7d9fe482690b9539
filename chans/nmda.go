// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import "github.com/chewxy/math32"

// NMDAParams is the ligand-gated NMDA receptor channel, based on the
// Brunel & Wang (2001) parameters.  The bound fraction s is driven by the
// transmitter (glutamate) concentration supplied by the caller, and the
// current is multiplicatively blocked by extracellular magnesium as a
// function of voltage.
type NMDAParams struct {
	E      float32 `def:"0" desc:"NMDA reversal potential (mV) -- mixed cation channel reverses near 0"`
	Tau    float32 `def:"100" desc:"decay time constant for the bound fraction (ms) -- rise time is 2 msec and not worth extra effort for biexponential"`
	Alpha  float32 `def:"0.072" desc:"binding rate per unit transmitter concentration (1/(ms*mM))"`
	Mg     float32 `def:"1" desc:"extracellular magnesium concentration (mM) -- drives the voltage-dependent block"`
	MgFact float32 `def:"0.28" desc:"1 / 3.57 -- scaling of the Mg concentration in the block expression"`
	V0     float32 `def:"0.062" desc:"voltage sensitivity of the Mg block (1/mV)"`
}

func (np *NMDAParams) Defaults() {
	np.E = 0
	np.Tau = 100
	np.Alpha = 0.072
	np.Mg = 1
	np.MgFact = 1.0 / 3.57
	np.V0 = 0.062
}

func (np *NMDAParams) Update() {
}

// MgBlock returns the fraction of channels not blocked by magnesium at
// voltage v (mV): sigmoidal relief of the block with depolarization.
func (np *NMDAParams) MgBlock(v float32) float32 {
	return 1 / (1 + np.MgFact*np.Mg*math32.Exp(-np.V0*v))
}

// DS returns ds/dt for bound fraction s given transmitter concentration
// trans (mM).  Binding saturates as s approaches 1; unbinding is first-order
// decay with Tau.  The Mg block does not enter the kinetics, only the current.
func (np *NMDAParams) DS(s, trans float32) float32 {
	return np.Alpha*trans*(1-s) - s/np.Tau
}

// G returns the instantaneous conductance for maximal conductance g (uS),
// voltage v, and bound fraction s, including the Mg block.
func (np *NMDAParams) G(g, v, s float32) float32 {
	return g * s * np.MgBlock(v)
}

// Current returns the NMDA current (nA) for maximal conductance g (uS),
// voltage v (mV), and bound fraction s.  Positive = outward.
func (np *NMDAParams) Current(g, v, s float32) float32 {
	return np.G(g, v, s) * (v - np.E)
}
