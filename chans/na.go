// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import "github.com/chewxy/math32"

// NaParams is the fast transient sodium channel responsible for the action
// potential upstroke, with m^3 h gating per standard Hodgkin-Huxley kinetics.
type NaParams struct {
	E      float32 `def:"50" desc:"sodium reversal potential (mV)"`
	VAct   float32 `def:"-40" desc:"half-activation voltage offset for the m opening rate (mV)"`
	VInact float32 `def:"-65" desc:"voltage offset for the h inactivation rates (mV)"`
}

func (np *NaParams) Defaults() {
	np.E = 50
	np.VAct = -40
	np.VInact = -65
}

func (np *NaParams) Update() {
}

// AlphaM is the voltage-dependent opening rate (1/ms) of the activation gate m.
func (np *NaParams) AlphaM(v float32) float32 {
	return 0.1 * VTrap(-(v-np.VAct), 10)
}

// BetaM is the voltage-dependent closing rate (1/ms) of the activation gate m.
func (np *NaParams) BetaM(v float32) float32 {
	return 4 * math32.Exp(-(v-np.VInact)/18)
}

// AlphaH is the voltage-dependent opening rate (1/ms) of the inactivation gate h.
func (np *NaParams) AlphaH(v float32) float32 {
	return 0.07 * math32.Exp(-(v-np.VInact)/20)
}

// BetaH is the voltage-dependent closing rate (1/ms) of the inactivation gate h.
func (np *NaParams) BetaH(v float32) float32 {
	return 1 / (1 + math32.Exp(-(v-np.VInact-30)/10))
}

// DM returns dm/dt for activation gate value m at voltage v.
func (np *NaParams) DM(v, m float32) float32 {
	return np.AlphaM(v)*(1-m) - np.BetaM(v)*m
}

// DH returns dh/dt for inactivation gate value h at voltage v.
func (np *NaParams) DH(v, h float32) float32 {
	return np.AlphaH(v)*(1-h) - np.BetaH(v)*h
}

// MInf returns the steady-state activation at voltage v, used to initialize
// gates at the resting potential.
func (np *NaParams) MInf(v float32) float32 {
	a, b := np.AlphaM(v), np.BetaM(v)
	return a / (a + b)
}

// HInf returns the steady-state inactivation at voltage v.
func (np *NaParams) HInf(v float32) float32 {
	a, b := np.AlphaH(v), np.BetaH(v)
	return a / (a + b)
}

// G returns the instantaneous conductance for maximal conductance g (uS)
// and gate values m, h.
func (np *NaParams) G(g, m, h float32) float32 {
	return g * m * m * m * h
}

// Current returns the sodium current (nA) for maximal conductance g (uS),
// voltage v (mV), and gate values m, h.  Positive = outward.
func (np *NaParams) Current(g, v, m, h float32) float32 {
	return np.G(g, m, h) * (v - np.E)
}
