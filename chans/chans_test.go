// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import (
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-5)

func TestVTrapSingularity(t *testing.T) {
	// the opening-rate denominator vanishes at x = 0: must return the
	// analytic limit, and be continuous through it
	if v := VTrap(0, 10); v != 10 {
		t.Errorf("VTrap(0, 10) = %v, want 10", v)
	}
	lim := VTrap(0, 10)
	for _, x := range []float32{-1e-3, -1e-5, 1e-5, 1e-3} {
		v := VTrap(x, 10)
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			t.Errorf("VTrap(%v, 10) is not finite: %v", x, v)
		}
		if math32.Abs(v-lim) > 1e-3 {
			t.Errorf("VTrap(%v, 10) = %v, not continuous at singularity (limit %v)", x, v, lim)
		}
	}
}

func TestNaRates(t *testing.T) {
	np := NaParams{}
	np.Defaults()
	// classic squid-axon values at V = -65 (rest): alpha_m = 0.1*25/(exp(2.5)-1)
	wantAm := float32(0.22356373)
	if am := np.AlphaM(-65); math32.Abs(am-wantAm) > difTol {
		t.Errorf("AlphaM(-65) = %v, want %v", am, wantAm)
	}
	if bm := np.BetaM(-65); math32.Abs(bm-4) > difTol {
		t.Errorf("BetaM(-65) = %v, want 4", bm)
	}
	if ah := np.AlphaH(-65); math32.Abs(ah-0.07) > difTol {
		t.Errorf("AlphaH(-65) = %v, want 0.07", ah)
	}
	// AlphaM has its removable singularity exactly at VAct
	if am := np.AlphaM(np.VAct); math32.Abs(am-1) > difTol {
		t.Errorf("AlphaM at singularity = %v, want 1", am)
	}
	// steady states are valid gate values at all physiological voltages
	for v := float32(-100); v <= 60; v++ {
		m, h := np.MInf(v), np.HInf(v)
		if m < 0 || m > 1 || h < 0 || h > 1 {
			t.Fatalf("steady state out of [0,1] at v=%v: m=%v h=%v", v, m, h)
		}
	}
}

func TestKdrRates(t *testing.T) {
	kp := KdrParams{}
	kp.Defaults()
	wantAn := float32(0.05819835) // 0.01*10/(exp(1)-1)
	if an := kp.AlphaN(-65); math32.Abs(an-wantAn) > difTol {
		t.Errorf("AlphaN(-65) = %v, want %v", an, wantAn)
	}
	if bn := kp.BetaN(-65); math32.Abs(bn-0.125) > difTol {
		t.Errorf("BetaN(-65) = %v, want 0.125", bn)
	}
	if an := kp.AlphaN(kp.VAct); math32.Abs(an-0.1) > difTol {
		t.Errorf("AlphaN at singularity = %v, want 0.1", an)
	}
}

func TestGateDerivsSelfLimiting(t *testing.T) {
	// first-order kinetics must push gates back into [0,1] at the bounds
	np := NaParams{}
	np.Defaults()
	kp := KdrParams{}
	kp.Defaults()
	for v := float32(-100); v <= 60; v += 10 {
		if d := np.DM(v, 0); d < 0 {
			t.Errorf("DM(v=%v, m=0) = %v < 0", v, d)
		}
		if d := np.DM(v, 1); d > 0 {
			t.Errorf("DM(v=%v, m=1) = %v > 0", v, d)
		}
		if d := np.DH(v, 0); d < 0 {
			t.Errorf("DH(v=%v, h=0) = %v < 0", v, d)
		}
		if d := np.DH(v, 1); d > 0 {
			t.Errorf("DH(v=%v, h=1) = %v > 0", v, d)
		}
		if d := kp.DN(v, 0); d < 0 {
			t.Errorf("DN(v=%v, n=0) = %v < 0", v, d)
		}
		if d := kp.DN(v, 1); d > 0 {
			t.Errorf("DN(v=%v, n=1) = %v > 0", v, d)
		}
	}
}

func TestCaActivation(t *testing.T) {
	cp := CaParams{}
	cp.Defaults()
	if m := cp.MInf(cp.VHalf); math32.Abs(m-0.5) > difTol {
		t.Errorf("MInf at VHalf = %v, want 0.5", m)
	}
	if m := cp.MInf(-80); m > 0.01 {
		t.Errorf("MInf(-80) = %v, want near 0 (high-voltage activated)", m)
	}
	if m := cp.MInf(40); m < 0.99 {
		t.Errorf("MInf(40) = %v, want near 1", m)
	}
}

func TestNMDAMgBlock(t *testing.T) {
	np := NMDAParams{}
	np.Defaults()
	// block relieved monotonically with depolarization
	prev := float32(-1)
	for v := float32(-90); v <= 40; v += 5 {
		b := np.MgBlock(v)
		if b <= prev {
			t.Fatalf("MgBlock not monotonic at v=%v: %v <= %v", v, b, prev)
		}
		if b < 0 || b > 1 {
			t.Fatalf("MgBlock out of [0,1] at v=%v: %v", v, b)
		}
		prev = b
	}
	// mostly blocked at rest, mostly open near reversal
	if b := np.MgBlock(-65); b > 0.2 {
		t.Errorf("MgBlock(-65) = %v, want < 0.2", b)
	}
	if b := np.MgBlock(0); b < 0.7 {
		t.Errorf("MgBlock(0) = %v, want > 0.7", b)
	}
	// no transmitter: bound fraction decays
	if d := np.DS(0.5, 0); d >= 0 {
		t.Errorf("DS(s=0.5, trans=0) = %v, want < 0", d)
	}
	// saturated binding cannot push s above 1
	if d := np.DS(1, 10); d > 0 {
		t.Errorf("DS(s=1, trans=10) = %v, want <= 0", d)
	}
}

func TestCurrentsZeroAtReversal(t *testing.T) {
	var cp Params
	cp.Defaults()
	if i := cp.Na.Current(1, cp.Na.E, 0.5, 0.5); math32.Abs(i) > difTol {
		t.Errorf("Na current at reversal = %v, want 0", i)
	}
	if i := cp.Kdr.Current(1, cp.Kdr.E, 0.5); math32.Abs(i) > difTol {
		t.Errorf("Kdr current at reversal = %v, want 0", i)
	}
	if i := cp.NMDA.Current(1, cp.NMDA.E, 0.5); math32.Abs(i) > difTol {
		t.Errorf("NMDA current at reversal = %v, want 0", i)
	}
	if i := cp.Leak.Current(1, cp.Leak.E); math32.Abs(i) > difTol {
		t.Errorf("leak current at reversal = %v, want 0", i)
	}
}
