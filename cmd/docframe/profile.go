package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"go.uber.org/zap"
)

// profiler writes CPU and heap profiles around a command.
type profiler struct {
	cpuFile string
	memFile string
	cpu     *os.File
	log     *zap.Logger
}

func (p *profiler) start() error {
	if p.cpuFile == "" {
		return nil
	}
	f, err := os.Create(p.cpuFile) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	p.cpu = f
	p.log.Debug("CPU profiling enabled", zap.String("path", p.cpuFile))
	return nil
}

func (p *profiler) stop() {
	if p.cpu != nil {
		pprof.StopCPUProfile()
		if err := p.cpu.Close(); err != nil {
			p.log.Warn("failed to close CPU profile", zap.Error(err))
		}
		p.cpu = nil
	}
	if p.memFile == "" {
		return
	}

	f, err := os.Create(p.memFile) //nolint:gosec // G304: path comes from the operator
	if err != nil {
		p.log.Warn("failed to create memory profile", zap.Error(err))
		return
	}
	defer f.Close()

	runtime.GC() // up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		p.log.Warn("failed to write memory profile", zap.Error(err))
		return
	}
	p.log.Debug("memory profile written", zap.String("path", p.memFile))
}
