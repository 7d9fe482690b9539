// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import "github.com/chewxy/math32"

// KdrParams is the delayed-rectifier potassium channel that repolarizes the
// membrane after a spike, with n^4 gating per standard Hodgkin-Huxley kinetics.
type KdrParams struct {
	E    float32 `def:"-77" desc:"potassium reversal potential (mV)"`
	VAct float32 `def:"-55" desc:"half-activation voltage offset for the n opening rate (mV)"`
	VOff float32 `def:"-65" desc:"voltage offset for the n closing rate (mV)"`
}

func (kp *KdrParams) Defaults() {
	kp.E = -77
	kp.VAct = -55
	kp.VOff = -65
}

func (kp *KdrParams) Update() {
}

// AlphaN is the voltage-dependent opening rate (1/ms) of the activation gate n.
func (kp *KdrParams) AlphaN(v float32) float32 {
	return 0.01 * VTrap(-(v-kp.VAct), 10)
}

// BetaN is the voltage-dependent closing rate (1/ms) of the activation gate n.
func (kp *KdrParams) BetaN(v float32) float32 {
	return 0.125 * math32.Exp(-(v-kp.VOff)/80)
}

// DN returns dn/dt for activation gate value n at voltage v.
func (kp *KdrParams) DN(v, n float32) float32 {
	return kp.AlphaN(v)*(1-n) - kp.BetaN(v)*n
}

// NInf returns the steady-state activation at voltage v.
func (kp *KdrParams) NInf(v float32) float32 {
	a, b := kp.AlphaN(v), kp.BetaN(v)
	return a / (a + b)
}

// G returns the instantaneous conductance for maximal conductance g (uS)
// and gate value n.
func (kp *KdrParams) G(g, n float32) float32 {
	return g * n * n * n * n
}

// Current returns the potassium current (nA) for maximal conductance g (uS),
// voltage v (mV), and gate value n.  Positive = outward.
func (kp *KdrParams) Current(g, v, n float32) float32 {
	return kp.G(g, n) * (v - kp.E)
}
