// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package bench drives the parallel cable engine over many steps and reports
throughput.  It sits outside the numerical core: nothing here feeds back into
the integration.
*/
package bench

import (
	"fmt"
	"io"
	"log"

	"github.com/ccnsim/cable/gpucable"
	"github.com/ccnsim/cable/morph"
	"github.com/emer/emergent/timer"
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"gonum.org/v1/gonum/stat"
)

// Config is the benchmark setup.
type Config struct {
	Template   string  `def:"pyramidal" desc:"morphology template name"`
	Neurons    int     `def:"64" min:"1" desc:"number of neurons simulated in parallel"`
	Steps      int     `def:"4000" min:"1" desc:"total integration steps"`
	Dt         float32 `def:"0.025" min:"0.001" desc:"integration step (ms)"`
	InjPA      float32 `def:"2000" desc:"current injected into every soma (pA)"`
	FlushEvery int     `def:"100" min:"1" desc:"steps enqueued per flush batch"`
	Threads    int     `min:"0" desc:"CPU threads, 0 = GOMAXPROCS"`
	GPU        bool    `desc:"run on the GPU compute pipeline if available"`
	ShaderDir  string  `def:"shaders" desc:"directory holding compiled compute shaders"`
	LogSoma    bool    `desc:"record the soma voltage trajectory of neuron 0"`
}

func (cf *Config) Defaults() {
	cf.Template = "pyramidal"
	cf.Neurons = 64
	cf.Steps = 4000
	cf.Dt = 0.025
	cf.InjPA = 2000
	cf.FlushEvery = 100
	cf.ShaderDir = "shaders"
}

// Result reports what a benchmark run measured.
type Result struct {
	Neurons           int     `desc:"neurons simulated"`
	Comps             int     `desc:"compartments per neuron"`
	Steps             int     `desc:"integration steps run"`
	MSec              float32 `desc:"simulated time covered (ms)"`
	Secs              float64 `desc:"total wall time (s)"`
	StepsPerSec       float64 `desc:"whole-population steps per second"`
	CompUpdatesPerSec float64 `desc:"compartment updates per second (neurons * comps * steps / secs)"`
	FlushMean         float64 `desc:"mean wall time per flush batch (s)"`
	FlushStd          float64 `desc:"std dev of wall time per flush batch (s)"`
	Spikes            int     `desc:"total spikes across the population"`
	RateHz            float64 `desc:"mean firing rate per neuron (Hz)"`
	OnGPU             bool    `desc:"true if the run executed on the GPU pipeline"`

	Soma *etable.Table `desc:"soma trajectory of neuron 0, if logged"`
}

// String gives the one-line throughput report.
func (rs *Result) String() string {
	dev := "cpu"
	if rs.OnGPU {
		dev = "gpu"
	}
	return fmt.Sprintf("%s: %d neurons x %d comps x %d steps: %6.4g s, %.3g comp-updates/s, %.1f Hz",
		dev, rs.Neurons, rs.Comps, rs.Steps, rs.Secs, rs.CompUpdatesPerSec, rs.RateHz)
}

// WriteSoma writes the logged soma trajectory as tab-separated CSV.
func (rs *Result) WriteSoma(w io.Writer) error {
	if rs.Soma == nil {
		return fmt.Errorf("bench: no soma trajectory logged")
	}
	return rs.Soma.WriteCSV(w, etable.Tab, etable.Headers)
}

func somaSchema() *etable.Table {
	dt := &etable.Table{}
	sch := etable.Schema{
		{"Time", etensor.FLOAT64, nil, nil},
		{"Vm", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
	return dt
}

// Run builds a simulator per cfg, steps it to completion in flush batches,
// and returns the timing results.  Integration faults (non-finite state)
// abort the run with the underlying step error.
func Run(cfg *Config) (*Result, error) {
	mo, err := morph.Template(cfg.Template)
	if err != nil {
		return nil, err
	}
	sim := gpucable.NewSimulator(mo, cfg.Neurons, cfg.Dt)
	sim.NThreads = cfg.Threads
	defer sim.Destroy()

	onGPU := false
	if cfg.GPU {
		if err := sim.ConfigGPU(cfg.ShaderDir); err != nil {
			log.Println("bench: no GPU compute device, falling back to CPU:", err)
		} else {
			onGPU = true
		}
	}

	for ni := 0; ni < cfg.Neurons; ni++ {
		if err := sim.SetInjected(ni, 0, cfg.InjPA); err != nil {
			return nil, err
		}
	}

	rs := &Result{Neurons: cfg.Neurons, Comps: mo.NComps(), Steps: cfg.Steps, OnGPU: onGPU}
	if cfg.LogSoma {
		rs.Soma = somaSchema()
	}

	var vs []float32
	var batchSecs []float64
	tmr := timer.Time{}
	tmr.Start()
	for done := 0; done < cfg.Steps; {
		bn := cfg.FlushEvery
		if done+bn > cfg.Steps {
			bn = cfg.Steps - done
		}
		for s := 0; s < bn; s++ {
			sim.Step()
		}
		btm := timer.Time{}
		btm.Start()
		if _, err := sim.Readback(&vs); err != nil {
			return nil, err
		}
		btm.Stop()
		batchSecs = append(batchSecs, btm.TotalSecs())
		done += bn
		if rs.Soma != nil {
			row := rs.Soma.Rows
			rs.Soma.SetNumRows(row + 1)
			rs.Soma.SetCellFloat("Time", row, float64(sim.Time()))
			rs.Soma.SetCellFloat("Vm", row, float64(vs[0]))
		}
	}
	tmr.Stop()

	rs.MSec = sim.Time()
	rs.Secs = tmr.TotalSecs()
	rs.StepsPerSec = float64(cfg.Steps) / rs.Secs
	rs.CompUpdatesPerSec = float64(cfg.Neurons) * float64(rs.Comps) * rs.StepsPerSec
	rs.FlushMean, rs.FlushStd = stat.MeanStdDev(batchSecs, nil)
	for ni := 0; ni < cfg.Neurons; ni++ {
		rs.Spikes += sim.SpikeCount(ni)
	}
	rs.RateHz = float64(rs.Spikes) / float64(cfg.Neurons) / (float64(rs.MSec) * 0.001)
	return rs, nil
}
