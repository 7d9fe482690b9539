// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cable implements the sequential multi-compartment cable-equation
engine: one neuron as a tree of electrical compartments with active
Hodgkin-Huxley-style membrane conductances, advanced one fixed time step at
a time by an external driver.

The integration scheme is a Jacobi-style semi-implicit update: all neighbor
and channel quantities are read from the previous step's state, and the
compartment's own conductance terms enter the update denominator, so the
voltage is a convex combination of reversal potentials and neighbor voltages
and remains bounded for any step size.  The same scheme, in the same
accumulation order, is used by the flat-buffer parallel engine in gpucable,
which is what makes the two engines comparable within numerical tolerance.
*/
package cable

import (
	"fmt"

	"github.com/ccnsim/cable/chans"
	"github.com/ccnsim/cable/morph"
	"github.com/chewxy/math32"
	"github.com/goki/mat32"
)

// Compartment is one electrical node of the neuron: membrane voltage,
// capacitance, channel gating state, and externally injected current.
// Structure (parent/child links, capacitance, axial conductance) comes from
// the morphology and never changes after construction.
type Compartment struct {
	Type morph.CompType `desc:"compartment classification"`

	Vm    float32 `desc:"membrane potential (mV)"`
	Inet  float32 `desc:"net current from the last step (nA), diagnostic"`
	Inj   float32 `desc:"externally injected current (pA) -- owned and refreshed by the caller, persists until the caller changes it"`
	Trans float32 `desc:"transmitter (glutamate) concentration (mM) seen by this compartment's NMDA channels -- owned by the caller like Inj"`

	M     float32 `desc:"Na channel activation gate"`
	H     float32 `desc:"Na channel inactivation gate"`
	N     float32 `desc:"Kdr channel activation gate"`
	CaM   float32 `desc:"Ca channel activation gate"`
	NmdaS float32 `desc:"NMDA receptor bound fraction"`
}

// Neuron is the sequential multi-compartment engine for one neuron.
// Construct with NewNeuron, then call Step once per time step; inject
// current with SetInjected before each step as needed.
type Neuron struct {
	Morph  *morph.Morph `desc:"tree morphology, immutable after construction"`
	Params Params       `desc:"all neuron-level parameters"`
	Dt     float32      `desc:"integration step size (ms), fixed for the lifetime of the neuron"`

	Comps []Compartment `desc:"compartment state, in morphology index order"`

	Time       float32 `desc:"accumulated simulation time (ms)"`
	Spike      bool    `desc:"true if the neuron spiked on the last step (edge-triggered)"`
	LastSpikeT float32 `desc:"time of the most recent spike (ms), -1 if none yet"`
	NSpikes    int     `desc:"total spikes since Init"`
	ISI        float32 `desc:"most recent inter-spike interval (ms), -1 before the second spike"`
	ISIAvg     float32 `desc:"running average inter-spike interval (ms), -1 before the second spike"`

	gbar   []chans.Chans // per-comp absolute conductances (uS), derived
	vmPrev []float32     // previous-step voltages for the Jacobi update
}

// NewNeuron constructs a neuron over the given morphology with the given
// integration step size (ms) and default parameters, initialized at rest.
func NewNeuron(mo *morph.Morph, dt float32) *Neuron {
	nrn := &Neuron{Morph: mo, Dt: dt}
	nrn.Params.Defaults()
	nrn.Build()
	nrn.Init()
	return nrn
}

// Build derives the per-compartment absolute conductances from the
// morphology and the density params.  Call again after changing densities
// between steps (plasticity-style parameter updates); never during a step.
func (nrn *Neuron) Build() {
	n := nrn.Morph.NComps()
	nrn.Comps = make([]Compartment, n)
	nrn.gbar = make([]chans.Chans, n)
	nrn.vmPrev = make([]float32, n)
	for i := range nrn.Comps {
		cp := &nrn.Comps[i]
		cp.Type = nrn.Morph.Segs[i].Type
		dens := nrn.Params.Dens.ForType(cp.Type)
		gs := nrn.Morph.GScale(i)
		nrn.gbar[i] = chans.Chans{
			Na:   dens.Na * gs,
			Kdr:  dens.Kdr * gs,
			Ca:   dens.Ca * gs,
			NMDA: dens.NMDA * gs,
			Leak: dens.Leak * gs,
		}
	}
}

// Init resets all compartments to the resting potential with gating
// variables at their voltage steady states, and clears spike state and
// injected currents.
func (nrn *Neuron) Init() {
	er := nrn.Params.ErevL
	ch := &nrn.Params.Chans
	for i := range nrn.Comps {
		cp := &nrn.Comps[i]
		cp.Vm = er
		cp.Inet = 0
		cp.Inj = 0
		cp.Trans = 0
		cp.M = ch.Na.MInf(er)
		cp.H = ch.Na.HInf(er)
		cp.N = ch.Kdr.NInf(er)
		cp.CaM = ch.Ca.MInf(er)
		cp.NmdaS = 0
		nrn.vmPrev[i] = er
	}
	nrn.Time = 0
	nrn.Spike = false
	nrn.LastSpikeT = -1
	nrn.NSpikes = 0
	nrn.ISI = -1
	nrn.ISIAvg = -1
}

// SetInjected sets the externally injected current (pA) for the given
// compartment.  The value persists across steps until the caller changes
// it.  An out-of-range index is a contract violation.
func (nrn *Neuron) SetInjected(comp int, pa float32) error {
	if comp < 0 || comp >= len(nrn.Comps) {
		return fmt.Errorf("%w: %d (have %d compartments)", ErrIndex, comp, len(nrn.Comps))
	}
	nrn.Comps[comp].Inj = pa
	return nil
}

// SetTransmitter sets the transmitter concentration (mM) driving the NMDA
// channels of the given compartment.  An out-of-range index is a contract
// violation.
func (nrn *Neuron) SetTransmitter(comp int, mm float32) error {
	if comp < 0 || comp >= len(nrn.Comps) {
		return fmt.Errorf("%w: %d (have %d compartments)", ErrIndex, comp, len(nrn.Comps))
	}
	nrn.Comps[comp].Trans = mm
	return nil
}

// Step advances all compartments by one time step: current accounting from
// previous-step state, semi-implicit voltage update, gating update with
// [0,1] clamping, and spike detection.  Returns a StepError wrapping
// ErrNonFinite if any state variable became non-finite -- the run must then
// be abandoned.
func (nrn *Neuron) Step() error {
	n := len(nrn.Comps)
	for i := 0; i < n; i++ {
		nrn.vmPrev[i] = nrn.Comps[i].Vm
	}
	tp := nrn.Morph.Topology()
	ch := &nrn.Params.Chans
	spikeVmPrev := nrn.vmPrev[nrn.Morph.SpikeComp]

	for i := 0; i < n; i++ {
		cp := &nrn.Comps[i]
		gb := &nrn.gbar[i]
		v := nrn.vmPrev[i]

		// current accounting: channel conductances at previous-step state,
		// in the canonical order (Na, Kdr, Ca, NMDA, leak, axial) shared
		// with the parallel engine
		gna := ch.Na.G(gb.Na, cp.M, cp.H)
		gk := ch.Kdr.G(gb.Kdr, cp.N)
		gca := ch.Ca.G(gb.Ca, cp.CaM)
		gnmda := ch.NMDA.G(gb.NMDA, v, cp.NmdaS)

		gSum := gna + gk + gca + gnmda + gb.Leak
		geSum := gna*ch.Na.E + gk*ch.Kdr.E + gca*ch.Ca.E + gnmda*ch.NMDA.E + gb.Leak*ch.Leak.E
		gSum, geSum = tp.AxialFmNeighbors(i, nrn.vmPrev, gSum, geSum)
		iinj := cp.Inj * 0.001 // pA -> nA

		cp.Inet = geSum - gSum*v + iinj

		// semi-implicit voltage update: conductances in the denominator
		// keep Vm a bounded convex combination of driving potentials
		dtc := nrn.Dt / tp.CapM[i]
		cp.Vm = (v + dtc*(geSum+iinj)) / (1 + dtc*gSum)

		// gating update, clamped to [0,1] against numerical overshoot
		cp.M = mat32.Clamp(cp.M+nrn.Dt*ch.Na.DM(v, cp.M), 0, 1)
		cp.H = mat32.Clamp(cp.H+nrn.Dt*ch.Na.DH(v, cp.H), 0, 1)
		cp.N = mat32.Clamp(cp.N+nrn.Dt*ch.Kdr.DN(v, cp.N), 0, 1)
		cp.CaM = mat32.Clamp(cp.CaM+nrn.Dt*ch.Ca.DM(v, cp.CaM), 0, 1)
		cp.NmdaS = mat32.Clamp(cp.NmdaS+nrn.Dt*ch.NMDA.DS(cp.NmdaS, cp.Trans), 0, 1)

		if math32.IsNaN(cp.Vm) || math32.IsInf(cp.Vm, 0) ||
			math32.IsNaN(cp.M) || math32.IsNaN(cp.H) || math32.IsNaN(cp.N) ||
			math32.IsNaN(cp.CaM) || math32.IsNaN(cp.NmdaS) {
			return &StepError{Comp: i, Time: nrn.Time, Err: ErrNonFinite}
		}
	}

	nrn.Time += nrn.Dt
	nrn.detectSpike(spikeVmPrev)
	return nil
}

// detectSpike flags a spike on an upward threshold crossing at the
// spike-initiation compartment, outside the refractory interval.
func (nrn *Neuron) detectSpike(vmPrev float32) {
	sp := &nrn.Params.Spike
	v := nrn.Comps[nrn.Morph.SpikeComp].Vm
	nrn.Spike = false
	if vmPrev >= sp.Thr || v < sp.Thr {
		return
	}
	if nrn.LastSpikeT >= 0 && nrn.Time-nrn.LastSpikeT < sp.Refract {
		return
	}
	nrn.Spike = true
	nrn.NSpikes++
	if nrn.LastSpikeT >= 0 {
		nrn.ISI = nrn.Time - nrn.LastSpikeT
		sp.AvgFmISI(&nrn.ISIAvg, nrn.ISI)
	}
	nrn.LastSpikeT = nrn.Time
}

// Vm returns the membrane potential (mV) of the given compartment.
func (nrn *Neuron) Vm(comp int) float32 {
	return nrn.Comps[comp].Vm
}

// SomaVm returns the soma membrane potential (mV).
func (nrn *Neuron) SomaVm() float32 {
	return nrn.Comps[0].Vm
}

// Voltages copies the current per-compartment voltages into vs, which is
// allocated / resized as needed, and returns it.
func (nrn *Neuron) Voltages(vs *[]float32) []float32 {
	n := len(nrn.Comps)
	if cap(*vs) < n {
		*vs = make([]float32, n)
	}
	*vs = (*vs)[:n]
	for i := range nrn.Comps {
		(*vs)[i] = nrn.Comps[i].Vm
	}
	return *vs
}
