// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import "github.com/chewxy/math32"

// CaParams is a high-voltage-activated (L-type-like) calcium channel with
// m^2 gating, expressed in steady-state / time-constant form.  It contributes
// the slow depolarizing current underlying dendritic calcium events.
type CaParams struct {
	E      float32 `def:"120" desc:"calcium reversal potential (mV) -- nominal ohmic driving potential, not a Nernst computation"`
	VHalf  float32 `def:"-20" desc:"half-activation voltage of the steady-state activation curve (mV)"`
	VSlope float32 `def:"9" desc:"slope factor of the steady-state activation curve (mV)"`
	Tau    float32 `def:"1.5" min:"0.1" desc:"activation time constant (ms)"`
}

func (cp *CaParams) Defaults() {
	cp.E = 120
	cp.VHalf = -20
	cp.VSlope = 9
	cp.Tau = 1.5
}

func (cp *CaParams) Update() {
}

// MInf returns the steady-state activation at voltage v.
func (cp *CaParams) MInf(v float32) float32 {
	return 1 / (1 + math32.Exp(-(v-cp.VHalf)/cp.VSlope))
}

// DM returns dm/dt for activation gate value m at voltage v.
func (cp *CaParams) DM(v, m float32) float32 {
	return (cp.MInf(v) - m) / cp.Tau
}

// G returns the instantaneous conductance for maximal conductance g (uS)
// and gate value m.
func (cp *CaParams) G(g, m float32) float32 {
	return g * m * m
}

// Current returns the calcium current (nA) for maximal conductance g (uS),
// voltage v (mV), and gate value m.  Positive = outward.
func (cp *CaParams) Current(g, v, m float32) float32 {
	return cp.G(g, m) * (v - cp.E)
}
