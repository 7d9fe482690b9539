// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
)

func TestTemplates(t *testing.T) {
	for _, nm := range []string{"pyramidal", "ballstick"} {
		mo, err := Template(nm)
		if err != nil {
			t.Fatalf("Template(%q): %v", nm, err)
		}
		if mo.NComps() < 2 {
			t.Errorf("%q: only %d compartments", nm, mo.NComps())
		}
		// tree well-formedness: descendant counts sum to n-1
		sum := 0
		for i := 0; i < mo.NComps(); i++ {
			sum += mo.Descendants(i)
		}
		if sum != mo.NComps()-1 {
			t.Errorf("%q: descendant counts sum to %d, want %d", nm, sum, mo.NComps()-1)
		}
	}
	if _, err := Template("octopus"); !errors.Is(err, ErrBadTopology) {
		t.Errorf("unknown template: got %v, want ErrBadTopology", err)
	}
}

func TestSpikeComp(t *testing.T) {
	mo, err := Template("pyramidal")
	if err != nil {
		t.Fatal(err)
	}
	if mo.Segs[mo.SpikeComp].Type != Axon {
		t.Errorf("pyramidal spike comp %d is %v, want Axon", mo.SpikeComp, mo.Segs[mo.SpikeComp].Type)
	}
	bs, err := Template("ballstick")
	if err != nil {
		t.Fatal(err)
	}
	if bs.SpikeComp != 0 {
		t.Errorf("ballstick (no axon) spike comp = %d, want soma 0", bs.SpikeComp)
	}
}

func TestBadTopologies(t *testing.T) {
	cases := map[string][]SegDef{
		"empty":   {},
		"no root": {{Type: Soma, Parent: 0, Diam: 20, Length: 20}},
		"root not soma": {
			{Type: BasalDend, Parent: -1, Diam: 2, Length: 10},
		},
		"forward parent": {
			{Type: Soma, Parent: -1, Diam: 20, Length: 20},
			{Type: BasalDend, Parent: 2, Diam: 2, Length: 10},
			{Type: BasalDend, Parent: 1, Diam: 2, Length: 10},
		},
		"self parent": {
			{Type: Soma, Parent: -1, Diam: 20, Length: 20},
			{Type: BasalDend, Parent: 1, Diam: 2, Length: 10},
		},
		"dangling parent": {
			{Type: Soma, Parent: -1, Diam: 20, Length: 20},
			{Type: BasalDend, Parent: 7, Diam: 2, Length: 10},
		},
		"second soma": {
			{Type: Soma, Parent: -1, Diam: 20, Length: 20},
			{Type: Soma, Parent: 0, Diam: 20, Length: 20},
		},
		"zero diam": {
			{Type: Soma, Parent: -1, Diam: 0, Length: 20},
		},
		"negative length": {
			{Type: Soma, Parent: -1, Diam: 20, Length: -5},
		},
	}
	for nm, segs := range cases {
		if _, err := New(segs); !errors.Is(err, ErrBadTopology) {
			t.Errorf("%s: got %v, want ErrBadTopology", nm, err)
		}
	}
}

func TestDerivedElectrical(t *testing.T) {
	mo, err := Template("ballstick")
	if err != nil {
		t.Fatal(err)
	}
	// 20x20 um cylinder soma: area = pi*20*20 um^2 = 1.2566e-5 cm^2,
	// C = 1 uF/cm^2 * area = 0.012566 nF
	wantC := float32(0.012566371)
	if c := mo.Capacitance(0); math32.Abs(c-wantC) > 1e-6 {
		t.Errorf("soma capacitance = %v nF, want %v", c, wantC)
	}
	tp := mo.Topology()
	if tp.GAxial[0] != 0 {
		t.Errorf("root axial conductance = %v, want 0", tp.GAxial[0])
	}
	for i := 1; i < mo.NComps(); i++ {
		if tp.GAxial[i] <= 0 {
			t.Errorf("comp %d axial conductance = %v, want > 0", i, tp.GAxial[i])
		}
	}
	// identical dendrite segments couple identically
	if math32.Abs(tp.GAxial[2]-tp.GAxial[3]) > 1e-7 {
		t.Errorf("uniform cable couplings differ: %v vs %v", tp.GAxial[2], tp.GAxial[3])
	}
}

// Each passive constant left zero takes its default independently; a
// caller-supplied value for the other field is preserved.
func TestGeomPartialDefaults(t *testing.T) {
	segs := []SegDef{{Type: Soma, Parent: -1, Diam: 20, Length: 20}}
	mo, err := NewGeom(segs, GeomParams{Ra: 200})
	if err != nil {
		t.Fatal(err)
	}
	if mo.Geom.Cm != 1 {
		t.Errorf("Cm = %v, want default 1", mo.Geom.Cm)
	}
	if mo.Geom.Ra != 200 {
		t.Errorf("Ra = %v, want supplied 200", mo.Geom.Ra)
	}
	mo, err = NewGeom(segs, GeomParams{Cm: 2})
	if err != nil {
		t.Fatal(err)
	}
	if mo.Geom.Cm != 2 {
		t.Errorf("Cm = %v, want supplied 2", mo.Geom.Cm)
	}
	if mo.Geom.Ra != 100 {
		t.Errorf("Ra = %v, want default 100", mo.Geom.Ra)
	}
}

func TestTopologyNeighbors(t *testing.T) {
	mo, err := Template("pyramidal")
	if err != nil {
		t.Fatal(err)
	}
	tp := mo.Topology()
	n := mo.NComps()
	if len(tp.Children) != n-1 {
		t.Fatalf("children slice has %d entries, want %d", len(tp.Children), n-1)
	}
	// every edge appears exactly once from each side: sum of per-comp
	// neighbor conductances counts each axial conductance twice
	vm := make([]float32, n) // zero voltages: gvSum must be 0
	var tot float64
	for ci := 0; ci < n; ci++ {
		gs, gv := tp.AxialFmNeighbors(ci, vm, 0, 0)
		if gv != 0 {
			t.Errorf("comp %d: nonzero gvSum %v for zero voltages", ci, gv)
		}
		tot += float64(gs)
	}
	var want float64
	for i := 1; i < n; i++ {
		want += 2 * float64(tp.GAxial[i])
	}
	if math32.Abs(float32(tot-want)) > 1e-4 {
		t.Errorf("total neighbor conductance %v, want %v", tot, want)
	}
}
