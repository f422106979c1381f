package benchmarks

import (
	"os"
	"path"
	"runtime"
	"runtime/pprof"

	"github.com/sirupsen/logrus"
)

// startProfiling starts the cpu profile when requested. The returned function
// stops it and writes the memory profile.
func startProfiling(saveFile string) func() {
	var cpuFile *os.File
	if cpuprofile != "" {
		cpuProfPath := path.Join(saveFile, cpuprofile)
		logrus.WithField("file", cpuProfPath).Info("profiling cpu")
		f, err := os.Create(cpuProfPath)
		if err != nil {
			logrus.WithError(err).Fatal("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			logrus.WithError(err).Fatal("could not start CPU profile")
		}
		cpuFile = f
	}

	return func() {
		if cpuFile != nil {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}
		if memprofile == "" {
			return
		}
		memProfPath := path.Join(saveFile, memprofile)
		logrus.WithField("file", memProfPath).Info("profiling memory")
		f, err := os.Create(memProfPath)
		if err != nil {
			logrus.WithError(err).Error("could not create memory profile")
			return
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			logrus.WithError(err).Error("could not write memory profile")
		}
	}
}
