// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package chans provides voltage- and ligand-gated membrane conductance channels
for compartmental cable-equation neuron models, using standard Hodgkin-Huxley
rate-function kinetics in biophysical units (mV, ms, mS/cm^2).

All functions are pure: given the present voltage and gating-variable values
they return the channel's ionic current and the gating derivatives.  No channel
holds mutable state -- gating variables are owned by the compartment that uses
the channel, so the same params can drive any number of compartments.
*/
package chans

import "github.com/chewxy/math32"

// VTrap computes x / (exp(x/y) - 1), the common denominator form of
// Hodgkin-Huxley opening rates, substituting the analytic limit y - x/2
// near the removable singularity at x = 0 instead of dividing by zero.
func VTrap(x, y float32) float32 {
	if math32.Abs(x/y) < 1e-4 {
		return y - 0.5*x
	}
	return x / (math32.Exp(x/y) - 1)
}

// Chans holds the per-channel-class maximal conductance densities (mS/cm^2)
// for one compartment class.  Compartment types differ only in these
// densities -- the kinetics themselves are shared.
type Chans struct {
	Na   float32 `desc:"transient sodium channel maximal conductance density"`
	Kdr  float32 `desc:"delayed-rectifier potassium channel maximal conductance density"`
	Ca   float32 `desc:"high-voltage-activated calcium channel maximal conductance density"`
	NMDA float32 `desc:"ligand-gated NMDA channel maximal conductance density"`
	Leak float32 `desc:"passive leak conductance density"`
}

// SetAll sets all the density values.
func (ch *Chans) SetAll(na, kdr, ca, nmda, leak float32) {
	ch.Na, ch.Kdr, ch.Ca, ch.NMDA, ch.Leak = na, kdr, ca, nmda, leak
}

// Params bundles the kinetics parameters for every channel class, as one
// immutable configuration value passed in wherever kinetics are computed,
// instead of hidden package-level constant tables.
type Params struct {
	Na   NaParams   `view:"inline" desc:"transient sodium channel kinetics"`
	Kdr  KdrParams  `view:"inline" desc:"delayed-rectifier potassium channel kinetics"`
	Ca   CaParams   `view:"inline" desc:"high-voltage-activated calcium channel kinetics"`
	NMDA NMDAParams `view:"inline" desc:"NMDA channel kinetics and Mg block"`
	Leak LeakParams `view:"inline" desc:"passive leak"`
}

func (cp *Params) Defaults() {
	cp.Na.Defaults()
	cp.Kdr.Defaults()
	cp.Ca.Defaults()
	cp.NMDA.Defaults()
	cp.Leak.Defaults()
	cp.Update()
}

// Update must be called after any changes to parameters.
func (cp *Params) Update() {
	cp.Na.Update()
	cp.Kdr.Update()
	cp.Ca.Update()
	cp.NMDA.Update()
	cp.Leak.Update()
}

//////////////////////////////////////////////////////////////////////////////////////
//  LeakParams

// LeakParams is the passive leak channel: constant conductance, no gating.
type LeakParams struct {
	E float32 `def:"-54.3" desc:"leak reversal potential (mV) -- the classic squid-axon value that yields a ~-65 mV resting potential against the Na and K gradients"`
}

func (lp *LeakParams) Defaults() {
	lp.E = -54.3
}

func (lp *LeakParams) Update() {
}

// Current returns the leak current (nA) for conductance g (uS) at voltage v.
func (lp *LeakParams) Current(g, v float32) float32 {
	return g * (v - lp.E)
}
