// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cable is the overall repository for the multi-compartment
cable-equation neuron simulator implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* chans: voltage-gated and ligand-gated channel kinetics (Na, Kdr, Ca, NMDA,
leak) as pure per-call rate and current functions, with the standard
Hodgkin-Huxley exponential / sigmoidal forms.

* morph: morphology trees -- explicit per-compartment geometry with parent
links, named templates (pyramidal, ballstick), construction-time validation,
and the derived electrical quantities (membrane capacitance, axial coupling
conductances) compiled into a flat coupling topology shared by both engines.

* cable: the sequential engine -- one multi-compartment neuron advanced one
integration step at a time, with spike detection at the axon initial segment
and inter-spike-interval tracking.

* gpucable: the parallel engine -- the same physics over flat contiguous
buffers for many neurons at once, as two data-parallel passes per step,
running on the vgpu compute pipeline or a multithreaded CPU fallback, with
fire-and-forget stepping and a single readback synchronization point.

* bench: drives the parallel engine over many steps and reports throughput.

* examples: these compile into runnable programs; examples/bench is the
benchmark driver and examples/chanplot plots the channel equations.
*/
package cable
