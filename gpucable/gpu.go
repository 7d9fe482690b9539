// Copyright (c) 2025, The CCNSim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpucable

import (
	"path/filepath"
	"unsafe"

	"github.com/goki/vgpu/vgpu"
)

// note: standard gosl should be go install'd to regenerate shaders

//go:generate gosl -exclude=Update,Defaults,SetFm chans kernel.go shaders/cable.hlsl

// gpuState holds the vgpu compute system driving the two per-step passes.
// Buffer set 0 holds the constant params / per-template tables, set 1 the
// mutable compartment and neuron state.
type gpuState struct {
	gp    *vgpu.GPU
	sy    *vgpu.System
	pass1 *vgpu.Pipeline
	pass2 *vgpu.Pipeline

	parsVl  *vgpu.Val
	cparVl  *vgpu.Val
	childVl *vgpu.Val
	compVl  *vgpu.Val
	neurVl  *vgpu.Val

	// dirty marks host-side state changed since the last upload (injected
	// currents, Init); uploaded at the start of the next flush.
	dirty bool
}

// ConfigGPU configures the GPU compute pipeline with shaders from shaderDir,
// after which flushes run on the device instead of the CPU fallback.
// Returns an error and leaves the CPU path active if no compute-capable
// device is available.  Call Destroy when done.
func (sim *Simulator) ConfigGPU(shaderDir string) error {
	if err := vgpu.Init(); err != nil {
		return err
	}
	gs := &gpuState{dirty: true}
	gs.gp = vgpu.NewComputeGPU()
	gs.gp.Config("cable")

	gs.sy = gs.gp.NewComputeSystem("cable")
	gs.pass1 = gs.sy.NewPipeline("pass1")
	gs.pass1.AddShaderFile("pass1", vgpu.ComputeShader, filepath.Join(shaderDir, "pass1.spv"))
	gs.pass2 = gs.sy.NewPipeline("pass2")
	gs.pass2.AddShaderFile("pass2", vgpu.ComputeShader, filepath.Join(shaderDir, "pass2.spv"))

	vars := gs.sy.Vars()
	setp := vars.AddSet()
	setd := vars.AddSet()

	parsv := setp.AddStruct("Params", int(unsafe.Sizeof(Params{})), 1, vgpu.Storage, vgpu.ComputeShader)
	cparv := setp.AddStruct("CompPars", int(unsafe.Sizeof(CompParams{})), len(sim.CompPars), vgpu.Storage, vgpu.ComputeShader)
	childv := setp.AddStruct("Children", 4, len(sim.Children), vgpu.Storage, vgpu.ComputeShader)
	compv := setd.AddStruct("Comps", int(unsafe.Sizeof(CompState{})), len(sim.Comps), vgpu.Storage, vgpu.ComputeShader)
	neurv := setd.AddStruct("Neurons", int(unsafe.Sizeof(NeuronState{})), len(sim.Neurons), vgpu.Storage, vgpu.ComputeShader)

	setp.ConfigVals(1)
	setd.ConfigVals(1)
	gs.sy.Config()

	gs.parsVl, _ = parsv.Vals.ValByIdxTry(0)
	gs.cparVl, _ = cparv.Vals.ValByIdxTry(0)
	gs.childVl, _ = childv.Vals.ValByIdxTry(0)
	gs.compVl, _ = compv.Vals.ValByIdxTry(0)
	gs.neurVl, _ = neurv.Vals.ValByIdxTry(0)

	sim.gpu = gs
	return nil
}

// Destroy releases the GPU resources; safe to call without a configured GPU.
func (sim *Simulator) Destroy() {
	if sim.gpu == nil {
		return
	}
	sim.gpu.sy.Destroy()
	sim.gpu.gp.Destroy()
	vgpu.Terminate()
	sim.gpu = nil
}

// upload copies all host state to the device.
func (gs *gpuState) upload(sim *Simulator) {
	gs.parsVl.CopyFromBytes(unsafe.Pointer(&sim.Params))
	gs.cparVl.CopyFromBytes(unsafe.Pointer(&sim.CompPars[0]))
	gs.childVl.CopyFromBytes(unsafe.Pointer(&sim.Children[0]))
	gs.compVl.CopyFromBytes(unsafe.Pointer(&sim.Comps[0]))
	gs.neurVl.CopyFromBytes(unsafe.Pointer(&sim.Neurons[0]))
	gs.sy.Mem.SyncToGPU()

	vars := gs.sy.Vars()
	vars.BindDynValIdx(0, "Params", 0)
	vars.BindDynValIdx(0, "CompPars", 0)
	vars.BindDynValIdx(0, "Children", 0)
	vars.BindDynValIdx(1, "Comps", 0)
	vars.BindDynValIdx(1, "Neurons", 0)
	gs.sy.CmdResetBindVars(gs.sy.CmdPool.Buff, 0)
	gs.dirty = false
}

// flush runs the enqueued steps on the device and reads the state back.
// The separate pass dispatches give the memory barrier between the
// current-accounting and integration phases of each step.
func (gs *gpuState) flush(sim *Simulator) error {
	if gs.dirty {
		gs.upload(sim)
	}
	n := len(sim.Comps)
	for s := 0; s < sim.pending; s++ {
		gs.pass1.RunComputeWait(gs.sy.CmdPool.Buff, n, 1, 1)
		gs.pass2.RunComputeWait(gs.sy.CmdPool.Buff, n, 1, 1)
	}
	gs.sy.Mem.SyncValIdxFmGPU(1, "Comps", 0)
	gs.sy.Mem.SyncValIdxFmGPU(1, "Neurons", 0)
	gs.compVl.CopyToBytes(unsafe.Pointer(&sim.Comps[0]))
	gs.neurVl.CopyToBytes(unsafe.Pointer(&sim.Neurons[0]))

	sim.time += float32(sim.pending) * sim.Params.Dt
	sim.pending = 0
	return sim.checkFinite()
}
