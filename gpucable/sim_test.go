// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpucable

import (
	"errors"
	"math"
	"testing"

	"github.com/ccnsim/cable/cable"
	"github.com/ccnsim/cable/morph"
	"github.com/chewxy/math32"
)

const testDt = float32(0.025)

// parityRun steps a sequential neuron and one lane of the parallel engine
// through the same injected-current schedule, flushing every step, and
// reports the worst per-compartment voltage divergence and both spike counts.
func parityRun(t *testing.T, tmpl string, injPA float32, nsteps int) (maxDiff float32, seqSpk, parSpk int) {
	mo, err := morph.Template(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	nrn := cable.NewNeuron(mo, testDt)
	sim := NewSimulator(mo, 3, testDt)

	if err := nrn.SetInjected(0, injPA); err != nil {
		t.Fatal(err)
	}
	for ni := 0; ni < sim.NNeurons; ni++ {
		if err := sim.SetInjected(ni, 0, injPA); err != nil {
			t.Fatal(err)
		}
	}

	nc := mo.NComps()
	for s := 0; s < nsteps; s++ {
		if err := nrn.Step(); err != nil {
			t.Fatalf("step %d: %v", s, err)
		}
		sim.Step()
		if err := sim.Flush(); err != nil {
			t.Fatalf("flush %d: %v", s, err)
		}
		for ni := 0; ni < sim.NNeurons; ni++ {
			for ci := 0; ci < nc; ci++ {
				pv, err := sim.CompVm(ni, ci)
				if err != nil {
					t.Fatal(err)
				}
				d := math32.Abs(pv - nrn.Vm(ci))
				if d > maxDiff {
					maxDiff = d
				}
			}
		}
	}
	return maxDiff, nrn.NSpikes, sim.SpikeCount(0)
}

func TestParityQuiescent(t *testing.T) {
	for _, tmpl := range []string{"ballstick", "pyramidal"} {
		md, ss, ps := parityRun(t, tmpl, 0, 500)
		if md > ParityTol {
			t.Errorf("%s: max voltage divergence %g > %g", tmpl, md, ParityTol)
		}
		if ss != 0 || ps != 0 {
			t.Errorf("%s: spontaneous spikes seq=%d par=%d", tmpl, ss, ps)
		}
	}
}

func TestParityDriven(t *testing.T) {
	md, ss, ps := parityRun(t, "ballstick", 2000, 2000)
	if md > ParityTol {
		t.Errorf("max voltage divergence %g > %g", md, ParityTol)
	}
	if ss == 0 {
		t.Errorf("no spikes under 2 nA drive")
	}
	if d := ss - ps; d < -1 || d > 1 {
		t.Errorf("spike counts diverge: seq=%d par=%d", ss, ps)
	}
}

// All lanes get identical inputs, so all lanes must produce bitwise-identical
// trajectories.
func TestLaneDeterminism(t *testing.T) {
	mo, err := morph.Template("pyramidal")
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulator(mo, 4, testDt)
	for ni := 0; ni < sim.NNeurons; ni++ {
		if err := sim.SetInjected(ni, 0, 1500); err != nil {
			t.Fatal(err)
		}
	}
	nc := mo.NComps()
	for s := 0; s < 1000; s++ {
		sim.Step()
	}
	if err := sim.Flush(); err != nil {
		t.Fatal(err)
	}
	for ni := 1; ni < sim.NNeurons; ni++ {
		for ci := 0; ci < nc; ci++ {
			v0, _ := sim.CompVm(0, ci)
			vi, _ := sim.CompVm(ni, ci)
			if v0 != vi {
				t.Fatalf("lane %d comp %d: %g != %g", ni, ci, vi, v0)
			}
		}
	}
	if sim.SpikeCount(1) != sim.SpikeCount(0) {
		t.Errorf("lane spike counts differ: %d vs %d", sim.SpikeCount(1), sim.SpikeCount(0))
	}
}

// Step is fire-and-forget: nothing is observable until a flush.
func TestDeferredVisibility(t *testing.T) {
	mo, err := morph.Template("ballstick")
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulator(mo, 1, testDt)
	if err := sim.SetInjected(0, 0, 3000); err != nil {
		t.Fatal(err)
	}
	v0, _ := sim.CompVm(0, 0)
	for s := 0; s < 100; s++ {
		sim.Step()
	}
	v1, _ := sim.CompVm(0, 0)
	if v1 != v0 {
		t.Errorf("state visible before flush: %g -> %g", v0, v1)
	}
	if sim.Time() != 0 {
		t.Errorf("time advanced before flush: %g", sim.Time())
	}
	var buf []float32
	vs, err := sim.Readback(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 1 {
		t.Fatalf("readback length %d", len(vs))
	}
	if vs[0] == v0 {
		t.Errorf("soma voltage unchanged after 100 driven steps")
	}
	if got, want := sim.Time(), float32(100)*testDt; math32.Abs(got-want) > 1e-5 {
		t.Errorf("time after flush = %g, want %g", got, want)
	}
}

func TestIndexContract(t *testing.T) {
	mo, err := morph.Template("ballstick")
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulator(mo, 2, testDt)
	cases := [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, mo.NComps()}, {99, 99}}
	for _, c := range cases {
		if err := sim.SetInjected(c[0], c[1], 100); !errors.Is(err, cable.ErrIndex) {
			t.Errorf("SetInjected(%d,%d): got %v, want ErrIndex", c[0], c[1], err)
		}
		if err := sim.SetTransmitter(c[0], c[1], 1); !errors.Is(err, cable.ErrIndex) {
			t.Errorf("SetTransmitter(%d,%d): got %v, want ErrIndex", c[0], c[1], err)
		}
		if _, err := sim.CompVm(c[0], c[1]); !errors.Is(err, cable.ErrIndex) {
			t.Errorf("CompVm(%d,%d): got %v, want ErrIndex", c[0], c[1], err)
		}
	}
}

func TestNonFiniteSurfacedAtFlush(t *testing.T) {
	mo, err := morph.Template("ballstick")
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulator(mo, 1, testDt)
	if err := sim.SetInjected(0, 0, float32(math.Inf(1))); err != nil {
		t.Fatal(err)
	}
	sim.Step()
	err = sim.Flush()
	if !errors.Is(err, cable.ErrNonFinite) {
		t.Fatalf("got %v, want ErrNonFinite", err)
	}
	var se *cable.StepError
	if !errors.As(err, &se) {
		t.Fatalf("fault not a StepError: %v", err)
	}
}

// A NaN transmitter corrupts the NMDA gate while the voltage stays finite
// for a step; the fault must surface at the flush all the same, matching the
// sequential engine's behavior.
func TestGateFaultSurfacedAtFlush(t *testing.T) {
	mo, err := morph.Template("ballstick")
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulator(mo, 1, testDt)
	if err := sim.SetTransmitter(0, 1, float32(math.NaN())); err != nil {
		t.Fatal(err)
	}
	sim.Step()
	err = sim.Flush()
	if !errors.Is(err, cable.ErrNonFinite) {
		t.Fatalf("got %v, want ErrNonFinite", err)
	}
	var se *cable.StepError
	if !errors.As(err, &se) {
		t.Fatalf("fault not a StepError: %v", err)
	}
	if se.Comp != 1 {
		t.Errorf("fault at comp %d, want 1", se.Comp)
	}
}

func TestInitRestores(t *testing.T) {
	mo, err := morph.Template("ballstick")
	if err != nil {
		t.Fatal(err)
	}
	sim := NewSimulator(mo, 2, testDt)
	rest, _ := sim.CompVm(0, 0)
	if err := sim.SetInjected(1, 0, 2500); err != nil {
		t.Fatal(err)
	}
	for s := 0; s < 4000; s++ {
		sim.Step()
	}
	if err := sim.Flush(); err != nil {
		t.Fatal(err)
	}
	if sim.SpikeCount(1) == 0 {
		t.Fatalf("no spikes before reset")
	}
	sim.Init()
	if sim.Time() != 0 {
		t.Errorf("time not reset: %g", sim.Time())
	}
	for ni := 0; ni < sim.NNeurons; ni++ {
		v, _ := sim.CompVm(ni, 0)
		if v != rest {
			t.Errorf("neuron %d soma not at rest after Init: %g != %g", ni, v, rest)
		}
		if sim.SpikeCount(ni) != 0 || sim.Spiked(ni) {
			t.Errorf("neuron %d spike state not cleared", ni)
		}
	}
}
