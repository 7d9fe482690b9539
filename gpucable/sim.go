// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gpucable is the parallel cable-equation engine: the same physics as
the sequential cable package, restructured over flat contiguous compartment
buffers so each step is two data-parallel passes (current accounting, then
integration) over all compartments of all neurons at once.

Step is fire-and-forget: it enqueues one integration step.  Nothing is
observable until Readback, the single synchronization point, which flushes
all enqueued steps -- on the GPU compute pipeline when one is configured,
else on the multithreaded CPU fallback -- and blocks until the voltages are
available.  No cancellation mid-step is supported; a step is atomic to the
caller.

For identical morphology, step size, and injected-current schedule, the
voltage trajectories of this engine and the sequential engine stay within
ParityTol of each other (see the parity tests).
*/
package gpucable

import (
	"fmt"

	"github.com/ccnsim/cable/cable"
	"github.com/ccnsim/cable/morph"
	"github.com/chewxy/math32"
)

// ParityTol is the default acceptable per-step absolute voltage divergence
// (mV) between the sequential and parallel engines, for identical inputs.
// Exported so callers can tighten or relax it; this is the order of
// magnitude float32 reassociation accumulates over a few thousand steps.
var ParityTol = float32(1.0e-3)

// Simulator advances many identical-morphology neurons in parallel over a
// flat structure-of-buffers layout.  Construct with NewSimulator; morphology
// and parameters are fixed for the object's lifetime.
type Simulator struct {
	Morph    *morph.Morph `desc:"shared morphology, immutable"`
	Params   Params       `desc:"kernel constants"`
	NNeurons int          `desc:"number of neurons"`
	NThreads int          `desc:"CPU fallback threads, 0 = GOMAXPROCS"`

	// flat buffers: Comps has NNeurons*NComps entries, neuron-major
	Comps    []CompState
	CompPars []CompParams
	Children []int32
	Neurons  []NeuronState

	// ErevL is the resting potential Init resets to (from cable defaults).
	ErevL float32

	pending int     // steps enqueued since the last Readback
	time    float32 // host-side mirror of the flushed simulation time (ms)
	gpu     *gpuState
}

// NewSimulator builds a simulator for n neurons of the given morphology and
// step size (ms), compiled from the same coupling topology the sequential
// engine uses, with the same default parameters, initialized at rest.
// The GPU pipeline is not configured by default: see ConfigGPU.
func NewSimulator(mo *morph.Morph, n int, dt float32) *Simulator {
	var cpr cable.Params
	cpr.Defaults()
	sim := &Simulator{Morph: mo, NNeurons: n, ErevL: cpr.ErevL}
	sim.Params.SetFm(&cpr, mo, dt)

	nc := mo.NComps()
	tp := mo.Topology()
	sim.CompPars = make([]CompParams, nc)
	for ti := 0; ti < nc; ti++ {
		dens := cpr.Dens.ForType(mo.Segs[ti].Type)
		gs := mo.GScale(ti)
		sim.CompPars[ti] = CompParams{
			CapM:       tp.CapM[ti],
			GAxial:     tp.GAxial[ti],
			GbarNa:     dens.Na * gs,
			GbarKdr:    dens.Kdr * gs,
			GbarCa:     dens.Ca * gs,
			GbarNMDA:   dens.NMDA * gs,
			GbarLeak:   dens.Leak * gs,
			Parent:     tp.Parent[ti],
			ChildStart: tp.ChildStart[ti],
			ChildN:     tp.ChildN[ti],
		}
	}
	sim.Children = tp.Children
	sim.Comps = make([]CompState, n*nc)
	sim.Neurons = make([]NeuronState, n)
	sim.Init()
	return sim
}

// Init resets all neurons to resting state with gates at their voltage
// steady states, clearing spikes, injected currents and pending steps.
func (sim *Simulator) Init() {
	ch := &sim.Params.Chans
	er := sim.ErevL
	for i := range sim.Comps {
		cs := &sim.Comps[i]
		*cs = CompState{
			Vm:  er,
			M:   ch.Na.MInf(er),
			H:   ch.Na.HInf(er),
			N:   ch.Kdr.NInf(er),
			CaM: ch.Ca.MInf(er),
		}
	}
	for i := range sim.Neurons {
		sim.Neurons[i] = NeuronState{LastSpikeT: -1}
	}
	sim.time = 0
	sim.pending = 0
	if sim.gpu != nil {
		sim.gpu.dirty = true
	}
}

// NComps returns compartments per neuron.
func (sim *Simulator) NComps() int {
	return int(sim.Params.NComps)
}

// compIndex validates and flattens a (neuron, compartment) address.
func (sim *Simulator) compIndex(ni, ci int) (int, error) {
	if ni < 0 || ni >= sim.NNeurons {
		return 0, fmt.Errorf("%w: neuron %d (have %d)", cable.ErrIndex, ni, sim.NNeurons)
	}
	nc := sim.NComps()
	if ci < 0 || ci >= nc {
		return 0, fmt.Errorf("%w: %d (have %d compartments)", cable.ErrIndex, ci, nc)
	}
	return ni*nc + ci, nil
}

// SetInjected sets the injected current (pA) for one compartment of one
// neuron.  Out-of-range indexes are contract violations.  Must not be called
// with steps pending on the GPU path (values are uploaded at the next flush).
func (sim *Simulator) SetInjected(ni, ci int, pa float32) error {
	fi, err := sim.compIndex(ni, ci)
	if err != nil {
		return err
	}
	sim.Comps[fi].Inj = pa
	if sim.gpu != nil {
		sim.gpu.dirty = true
	}
	return nil
}

// SetTransmitter sets the NMDA transmitter concentration (mM) for one
// compartment of one neuron.
func (sim *Simulator) SetTransmitter(ni, ci int, mm float32) error {
	fi, err := sim.compIndex(ni, ci)
	if err != nil {
		return err
	}
	sim.Comps[fi].Trans = mm
	if sim.gpu != nil {
		sim.gpu.dirty = true
	}
	return nil
}

// Step enqueues one integration step for all neurons.  Fire-and-forget: no
// state is observable until Readback.
func (sim *Simulator) Step() {
	sim.pending++
}

// Flush runs all enqueued steps to completion.  Readback calls this; it is
// exported for callers that want to advance without reading.
func (sim *Simulator) Flush() error {
	if sim.pending == 0 {
		return nil
	}
	if sim.gpu != nil {
		return sim.gpu.flush(sim)
	}
	n := len(sim.Comps)
	for s := 0; s < sim.pending; s++ {
		ParallelRun(func(st, ed int) {
			for ci := st; ci < ed; ci++ {
				sim.Params.Pass1(ci, sim.Comps, sim.CompPars, sim.Children)
			}
		}, n, sim.NThreads)
		ParallelRun(func(st, ed int) {
			for ci := st; ci < ed; ci++ {
				sim.Params.Pass2(ci, sim.Comps, sim.CompPars, sim.Neurons)
			}
		}, n, sim.NThreads)
	}
	sim.time += float32(sim.pending) * sim.Params.Dt
	sim.pending = 0
	return sim.checkFinite()
}

// Time returns the flushed simulation time (ms); enqueued but unflushed
// steps are not included, matching their unobservability.
func (sim *Simulator) Time() float32 {
	return sim.time
}

// checkFinite surfaces numerical-integrity faults at the observation point.
// Gating variables are fault state like the voltage: a NaN gate leaves the
// voltage finite for one step but invalidates the run just the same.
func (sim *Simulator) checkFinite() error {
	nc := sim.NComps()
	for i := range sim.Comps {
		cs := &sim.Comps[i]
		if math32.IsNaN(cs.Vm) || math32.IsInf(cs.Vm, 0) ||
			math32.IsNaN(cs.M) || math32.IsNaN(cs.H) || math32.IsNaN(cs.N) ||
			math32.IsNaN(cs.CaM) || math32.IsNaN(cs.NmdaS) {
			return &cable.StepError{Comp: i % nc, Time: sim.time, Err: cable.ErrNonFinite}
		}
	}
	return nil
}

// Readback flushes all enqueued steps, blocks until they complete, and
// returns the soma voltage (mV) of every neuron in vs (resized as needed).
// This is the single synchronization point of the engine.
func (sim *Simulator) Readback(vs *[]float32) ([]float32, error) {
	if err := sim.Flush(); err != nil {
		return nil, err
	}
	n := sim.NNeurons
	if cap(*vs) < n {
		*vs = make([]float32, n)
	}
	*vs = (*vs)[:n]
	nc := sim.NComps()
	for ni := 0; ni < n; ni++ {
		(*vs)[ni] = sim.Comps[ni*nc].Vm
	}
	return *vs, nil
}

// CompVm returns the membrane potential of one compartment of one neuron.
// Only valid after a Readback / Flush (no steps pending).
func (sim *Simulator) CompVm(ni, ci int) (float32, error) {
	fi, err := sim.compIndex(ni, ci)
	if err != nil {
		return 0, err
	}
	return sim.Comps[fi].Vm, nil
}

// Spiked reports whether the given neuron spiked on the last flushed step.
func (sim *Simulator) Spiked(ni int) bool {
	return sim.Neurons[ni].Spike != 0
}

// SpikeCount returns the total spikes of the given neuron since Init.
func (sim *Simulator) SpikeCount(ni int) int {
	return int(sim.Neurons[ni].NSpikes)
}
