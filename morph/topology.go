// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

// Topology is the flat coupling structure of one morphology: adjacency as
// index pairs with conductance weights, plus the per-compartment membrane
// capacitance.  It is the single representation both the tree-walking
// sequential engine and the flat-buffer parallel engine compute from, so the
// two physics implementations cannot drift apart structurally.
//
// All slices are indexed by compartment, int32 / float32 so the same layout
// can be uploaded to GPU storage buffers unchanged.
type Topology struct {

	// Parent is the parent compartment index, -1 for the root.
	Parent []int32

	// GAxial is the axial conductance to the parent in uS (0 for the root).
	GAxial []float32

	// CapM is the membrane capacitance in nF.
	CapM []float32

	// ChildStart and ChildN index the Children slice per compartment.
	ChildStart []int32
	ChildN     []int32

	// Children holds all child indices, grouped by parent in index order.
	Children []int32

	// SpikeComp is the spike-initiation compartment index.
	SpikeComp int32
}

// NComps returns the number of compartments.
func (tp *Topology) NComps() int {
	return len(tp.Parent)
}

// AxialFmNeighbors folds the axial coupling terms of compartment ci into
// the running conductance and conductance-weighted-voltage sums, given the
// previous-step voltage slice.  Parent first, then children in index order,
// one += per term -- the one canonical accumulation order shared by both
// engines, so their floating-point results match bit for bit.
func (tp *Topology) AxialFmNeighbors(ci int, vm []float32, gSum, gvSum float32) (float32, float32) {
	if pi := tp.Parent[ci]; pi >= 0 {
		g := tp.GAxial[ci]
		gSum += g
		gvSum += g * vm[pi]
	}
	cs, cn := tp.ChildStart[ci], tp.ChildN[ci]
	for k := cs; k < cs+cn; k++ {
		child := tp.Children[k]
		g := tp.GAxial[child]
		gSum += g
		gvSum += g * vm[child]
	}
	return gSum, gvSum
}
