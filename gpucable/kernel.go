// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpucable

import (
	"github.com/ccnsim/cable/cable"
	"github.com/ccnsim/cable/chans"
	"github.com/ccnsim/cable/morph"
	"github.com/goki/mat32"
)

//gosl: start cable

// CompState is the dynamic state of one compartment, packed contiguously for
// all compartments of all neurons: index = neuron*NComps + template index.
// 48 bytes, GPU storage-buffer friendly.
type CompState struct {
	Vm    float32 `desc:"membrane potential (mV)"`
	GSum  float32 `desc:"pass-1 total conductance (uS) including axial terms"`
	GESum float32 `desc:"pass-1 conductance-weighted driving sum (nA) including axial terms"`
	Inj   float32 `desc:"externally injected current (pA)"`
	Trans float32 `desc:"NMDA transmitter concentration (mM)"`
	M     float32 `desc:"Na activation gate"`
	H     float32 `desc:"Na inactivation gate"`
	N     float32 `desc:"Kdr activation gate"`
	CaM   float32 `desc:"Ca activation gate"`
	NmdaS float32 `desc:"NMDA bound fraction"`
	Inet  float32 `desc:"net current from the last step (nA)"`

	pad float32
}

// CompParams are the static per-template-compartment electrical parameters,
// shared by every neuron in the simulator (all neurons have the same
// morphology).  48 bytes.
type CompParams struct {
	CapM     float32 `desc:"membrane capacitance (nF)"`
	GAxial   float32 `desc:"axial conductance to parent (uS)"`
	GbarNa   float32 `desc:"Na maximal conductance (uS)"`
	GbarKdr  float32 `desc:"Kdr maximal conductance (uS)"`
	GbarCa   float32 `desc:"Ca maximal conductance (uS)"`
	GbarNMDA float32 `desc:"NMDA maximal conductance (uS)"`
	GbarLeak float32 `desc:"leak conductance (uS)"`

	Parent     int32 `desc:"template index of parent, -1 for root"`
	ChildStart int32 `desc:"start of this compartment's children in the child index buffer"`
	ChildN     int32 `desc:"number of children"`

	pad, pad1 int32
}

// NeuronState is the per-neuron spike state.  16 bytes.  StepN is advanced
// on-device by the spike-initiation compartment's thread, so the kernel
// derives simulation time itself and no per-step parameter upload is needed
// between the enqueue and the readback synchronization point.
type NeuronState struct {
	Spike      int32   `desc:"1 if the neuron spiked on the last step"`
	NSpikes    int32   `desc:"total spikes since Init"`
	LastSpikeT float32 `desc:"time of most recent spike (ms), -1 if none"`
	StepN      int32   `desc:"completed integration steps since Init"`
}

// Params are the kernel constants: kinetics, spike detection, and step size.
type Params struct {
	Chans chans.Params `desc:"channel kinetics constants"`

	Dt        float32 `desc:"integration step size (ms)"`
	Thr       float32 `desc:"spike threshold (mV)"`
	Refract   float32 `desc:"refractory minimum inter-spike interval (ms)"`
	NComps    int32   `desc:"compartments per neuron"`
	SpikeComp int32   `desc:"template index of the spike-initiation compartment"`

	pad, pad1, pad2 int32
}

// Pass1 is the current-accounting pass for global compartment index ci:
// it reads the previous-step voltages of ci and its tree neighbors and
// accumulates the total conductance and driving sums into ci's own state.
// No compartment writes any state another compartment reads this step, so
// all compartments can run concurrently (Jacobi update).
//
// Accumulation order -- Na, Kdr, Ca, NMDA, leak, then parent and children in
// index order -- is the canonical order shared with the sequential engine.
func (pr *Params) Pass1(ci int, comps []CompState, cpar []CompParams, children []int32) {
	ti := int32(ci) % pr.NComps
	base := int32(ci) - ti
	cs := &comps[ci]
	cp := &cpar[ti]
	ch := &pr.Chans
	v := cs.Vm

	gna := ch.Na.G(cp.GbarNa, cs.M, cs.H)
	gk := ch.Kdr.G(cp.GbarKdr, cs.N)
	gca := ch.Ca.G(cp.GbarCa, cs.CaM)
	gnmda := ch.NMDA.G(cp.GbarNMDA, v, cs.NmdaS)

	gSum := gna + gk + gca + gnmda + cp.GbarLeak
	geSum := gna*ch.Na.E + gk*ch.Kdr.E + gca*ch.Ca.E + gnmda*ch.NMDA.E + cp.GbarLeak*ch.Leak.E

	if cp.Parent >= 0 {
		g := cp.GAxial
		gSum += g
		geSum += g * comps[base+cp.Parent].Vm
	}
	for k := cp.ChildStart; k < cp.ChildStart+cp.ChildN; k++ {
		child := children[k]
		g := cpar[child].GAxial
		gSum += g
		geSum += g * comps[base+child].Vm
	}

	cs.GSum = gSum
	cs.GESum = geSum
}

// Pass2 is the integration pass for global compartment index ci: it reads
// only ci's own state (voltage still previous-step, sums from Pass1) and
// writes the new voltage and gates.  The compartment holding the
// spike-initiation site also updates its neuron's spike state -- exactly one
// such compartment exists per neuron, so the write is race-free.
func (pr *Params) Pass2(ci int, comps []CompState, cpar []CompParams, neurs []NeuronState) {
	ti := int32(ci) % pr.NComps
	cs := &comps[ci]
	cp := &cpar[ti]
	ch := &pr.Chans
	v := cs.Vm

	iinj := cs.Inj * 0.001 // pA -> nA
	cs.Inet = cs.GESum - cs.GSum*v + iinj

	dtc := pr.Dt / cp.CapM
	vNew := (v + dtc*(cs.GESum+iinj)) / (1 + dtc*cs.GSum)
	cs.Vm = vNew

	cs.M = mat32.Clamp(cs.M+pr.Dt*ch.Na.DM(v, cs.M), 0, 1)
	cs.H = mat32.Clamp(cs.H+pr.Dt*ch.Na.DH(v, cs.H), 0, 1)
	cs.N = mat32.Clamp(cs.N+pr.Dt*ch.Kdr.DN(v, cs.N), 0, 1)
	cs.CaM = mat32.Clamp(cs.CaM+pr.Dt*ch.Ca.DM(v, cs.CaM), 0, 1)
	cs.NmdaS = mat32.Clamp(cs.NmdaS+pr.Dt*ch.NMDA.DS(cs.NmdaS, cs.Trans), 0, 1)

	if ti == pr.SpikeComp {
		ni := int32(ci) / pr.NComps
		ns := &neurs[ni]
		ns.StepN++
		t := float32(ns.StepN) * pr.Dt
		ns.Spike = 0
		if v < pr.Thr && vNew >= pr.Thr {
			if ns.LastSpikeT < 0 || t-ns.LastSpikeT >= pr.Refract {
				ns.Spike = 1
				ns.NSpikes++
				ns.LastSpikeT = t
			}
		}
	}
}

//gosl: end cable

// SetFm fills the kernel params from the sequential engine's parameter set
// and a morphology, so both engines run the identical physics constants.
func (pr *Params) SetFm(cpr *cable.Params, mo *morph.Morph, dt float32) {
	pr.Chans = cpr.Chans
	pr.Dt = dt
	pr.Thr = cpr.Spike.Thr
	pr.Refract = cpr.Spike.Refract
	pr.NComps = int32(mo.NComps())
	pr.SpikeComp = int32(mo.SpikeComp)
}
