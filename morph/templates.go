// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import "fmt"

// Template builds one of the named canonical morphologies:
//
//	"pyramidal" -- 16-compartment cortical pyramidal cell: soma, axon initial
//	segment + axon, two 3-compartment basal dendrites, apical trunk with a
//	4-compartment tuft.
//	"ballstick" -- minimal soma + single dendrite cable, the standard
//	reduced model for passive-propagation checks.
//
// Unknown names are a construction-time configuration error.
func Template(name string) (*Morph, error) {
	var segs []SegDef
	switch name {
	case "pyramidal":
		segs = pyramidalSegs()
	case "ballstick":
		segs = ballStickSegs()
	default:
		return nil, fmt.Errorf("%w: unknown template %q", ErrBadTopology, name)
	}
	mo, err := New(segs)
	if err != nil {
		return nil, err
	}
	mo.Name = name
	return mo, nil
}

// pyramidalSegs is a compact layer-5-style pyramidal cell.  Index layout:
//
//	0: soma
//	1-2: axon initial segment, axon
//	3-5: basal dendrite a (3 segments)
//	6-8: basal dendrite b
//	9-11: apical trunk (3 segments)
//	12-15: apical tuft (two 2-segment branches)
func pyramidalSegs() []SegDef {
	return []SegDef{
		{Type: Soma, Parent: -1, Diam: 20, Length: 20},
		{Type: Axon, Parent: 0, Diam: 1.5, Length: 30},
		{Type: Axon, Parent: 1, Diam: 1, Length: 50},
		{Type: BasalDend, Parent: 0, Diam: 2, Length: 80},
		{Type: BasalDend, Parent: 3, Diam: 1.5, Length: 80},
		{Type: BasalDend, Parent: 4, Diam: 1, Length: 80},
		{Type: BasalDend, Parent: 0, Diam: 2, Length: 80},
		{Type: BasalDend, Parent: 6, Diam: 1.5, Length: 80},
		{Type: BasalDend, Parent: 7, Diam: 1, Length: 80},
		{Type: ApicalDend, Parent: 0, Diam: 4, Length: 150},
		{Type: ApicalDend, Parent: 9, Diam: 3, Length: 150},
		{Type: ApicalDend, Parent: 10, Diam: 2.5, Length: 150},
		{Type: ApicalDend, Parent: 11, Diam: 1.5, Length: 100},
		{Type: ApicalDend, Parent: 12, Diam: 1, Length: 100},
		{Type: ApicalDend, Parent: 11, Diam: 1.5, Length: 100},
		{Type: ApicalDend, Parent: 14, Diam: 1, Length: 100},
	}
}

func ballStickSegs() []SegDef {
	return []SegDef{
		{Type: Soma, Parent: -1, Diam: 20, Length: 20},
		{Type: BasalDend, Parent: 0, Diam: 2, Length: 100},
		{Type: BasalDend, Parent: 1, Diam: 2, Length: 100},
		{Type: BasalDend, Parent: 2, Diam: 2, Length: 100},
	}
}
