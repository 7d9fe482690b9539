// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package morph builds immutable tree morphologies of neural compartments
(soma, dendritic and axonal segments) and derives the electrical coupling
structure (membrane capacitance, axial conductances) that the cable-equation
engines integrate over.

A morphology is fixed after construction: compartments are never added or
removed at runtime, only their electrical state evolves in the engines.
*/
package morph

import (
	"errors"
	"fmt"

	"github.com/goki/mat32"
)

// ErrBadTopology is the sentinel for all structural / configuration errors:
// missing or multiple roots, dangling or forward parent references, and
// non-positive geometry.  Construction fails and no morphology is produced.
var ErrBadTopology = errors.New("morph: malformed topology")

// SegDef specifies one compartment: its type, parent link, and geometry.
// The root (index 0) must be the soma with Parent = -1; every other
// compartment must reference an already-defined parent (Parent < own index),
// which rules out cycles by construction.
type SegDef struct {
	Type   CompType `desc:"compartment classification, determines default channel densities"`
	Parent int      `desc:"index of parent compartment, -1 for the soma root"`
	Diam   float32  `min:"0" desc:"diameter (um)"`
	Length float32  `min:"0" desc:"length (um)"`
}

// GeomParams are the passive electrical constants used to derive capacitance
// and axial conductance from geometry.
type GeomParams struct {
	Cm float32 `def:"1" desc:"specific membrane capacitance (uF/cm^2)"`
	Ra float32 `def:"100" desc:"axial resistivity (ohm cm)"`
}

func (gp *GeomParams) Defaults() {
	gp.Cm = 1
	gp.Ra = 100
}

func (gp *GeomParams) Update() {
}

// Morph is an immutable rooted tree of compartments with derived electrical
// coupling structure.  Construct with New or Template; do not mutate after.
type Morph struct {
	Name string     `desc:"template name or empty for explicit morphologies"`
	Geom GeomParams `view:"inline" desc:"passive electrical constants"`

	// Segs are the compartment definitions, in tree order (parents first).
	Segs []SegDef

	// SpikeComp is the spike-initiation compartment: the first axon
	// compartment if any, else the soma.
	SpikeComp int

	topo Topology
	desc []int // descendant count per compartment
}

// New builds and validates a morphology from explicit segment definitions,
// deriving the coupling topology.  Returns a wrapped ErrBadTopology for any
// structural defect; the morphology is never produced in that case.
func New(segs []SegDef) (*Morph, error) {
	return NewGeom(segs, GeomParams{})
}

// NewGeom is New with explicit passive constants; each zero field takes its
// default independently, preserving the other.
func NewGeom(segs []SegDef, geom GeomParams) (*Morph, error) {
	var def GeomParams
	def.Defaults()
	if geom.Cm == 0 {
		geom.Cm = def.Cm
	}
	if geom.Ra == 0 {
		geom.Ra = def.Ra
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("%w: no compartments", ErrBadTopology)
	}
	if segs[0].Parent != -1 || segs[0].Type != Soma {
		return nil, fmt.Errorf("%w: compartment 0 must be the soma root (parent -1)", ErrBadTopology)
	}
	for i, sg := range segs {
		if i > 0 {
			if sg.Parent < 0 || sg.Parent >= i {
				return nil, fmt.Errorf("%w: compartment %d parent %d must reference an earlier compartment", ErrBadTopology, i, sg.Parent)
			}
			if sg.Type == Soma {
				return nil, fmt.Errorf("%w: compartment %d: only compartment 0 can be the soma", ErrBadTopology, i)
			}
		}
		if sg.Diam <= 0 || sg.Length <= 0 {
			return nil, fmt.Errorf("%w: compartment %d: diameter and length must be > 0 (got %g x %g)", ErrBadTopology, i, sg.Diam, sg.Length)
		}
	}
	mo := &Morph{Geom: geom, Segs: segs}
	mo.build()
	return mo, nil
}

// build derives the coupling topology and descendant counts.  Called once
// from construction on validated segments.
func (mo *Morph) build() {
	n := len(mo.Segs)
	tp := &mo.topo
	tp.Parent = make([]int32, n)
	tp.GAxial = make([]float32, n)
	tp.CapM = make([]float32, n)
	tp.ChildStart = make([]int32, n)
	tp.ChildN = make([]int32, n)

	mo.SpikeComp = 0
	for i, sg := range mo.Segs {
		tp.Parent[i] = int32(sg.Parent)
		tp.CapM[i] = mo.Capacitance(i)
		if i > 0 {
			tp.GAxial[i] = mo.AxialG(i)
			tp.ChildN[sg.Parent]++
		}
		if sg.Type == Axon && mo.SpikeComp == 0 {
			mo.SpikeComp = i
		}
	}
	// children flattened in index order, so both engines traverse neighbors
	// in the identical sequence
	tp.Children = make([]int32, 0, n-1)
	for i := range mo.Segs {
		tp.ChildStart[i] = int32(len(tp.Children))
		for j := i + 1; j < n; j++ {
			if mo.Segs[j].Parent == i {
				tp.Children = append(tp.Children, int32(j))
			}
		}
	}
	tp.SpikeComp = int32(mo.SpikeComp)

	mo.desc = make([]int, n)
	for i := n - 1; i > 0; i-- {
		mo.desc[mo.Segs[i].Parent] += mo.desc[i] + 1
	}
}

// NComps returns the number of compartments.
func (mo *Morph) NComps() int {
	return len(mo.Segs)
}

// Descendants returns the number of descendants of compartment i.
func (mo *Morph) Descendants(i int) int {
	return mo.desc[i]
}

// Area returns the membrane area of compartment i in cm^2 (cylinder lateral
// surface; the soma is treated as a cylinder too, the conventional
// equal-area reduction).
func (mo *Morph) Area(i int) float32 {
	sg := &mo.Segs[i]
	return mat32.Pi * sg.Diam * sg.Length * 1e-8 // um^2 -> cm^2
}

// Capacitance returns the membrane capacitance of compartment i in nF.
func (mo *Morph) Capacitance(i int) float32 {
	return mo.Geom.Cm * mo.Area(i) * 1e3 // uF -> nF
}

// AxialG returns the axial conductance between compartment i and its parent
// in uS, from the cylinder cross-section and the axial resistivity, using
// the mean of the two half-segment resistances.
func (mo *Morph) AxialG(i int) float32 {
	sg := &mo.Segs[i]
	pg := &mo.Segs[sg.Parent]
	ri := mo.halfAxialR(sg)
	rp := mo.halfAxialR(pg)
	return 1e6 / (ri + rp) // ohm -> uS
}

// halfAxialR is the axial resistance (ohm) of half of one segment.
func (mo *Morph) halfAxialR(sg *SegDef) float32 {
	dcm := sg.Diam * 1e-4
	lcm := sg.Length * 1e-4
	return mo.Geom.Ra * (lcm / 2) / (mat32.Pi * dcm * dcm / 4)
}

// GScale returns the factor converting a conductance density (mS/cm^2) of
// compartment i into an absolute conductance in uS.
func (mo *Morph) GScale(i int) float32 {
	return mo.Area(i) * 1e3 // mS -> uS
}

// Topology returns the shared coupling representation both the sequential
// and the parallel engine compile their update from.  The returned value
// aliases immutable construction-time slices and must not be modified.
func (mo *Morph) Topology() *Topology {
	return &mo.topo
}
