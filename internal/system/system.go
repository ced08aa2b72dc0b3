package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// InitResourceLimits raises the open-file limit; a long render keeps many
// segment files and encoder pipes open at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read the open-file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise the open-file limit: %v", err)
	} else {
		fmt.Printf("[*] Open-file limit raised to %d\n", rLimit.Cur)
	}
}

// EncodeWorkers picks how many ffmpeg segment encoders to run in parallel.
// Logical core count is the ceiling; four is enough to keep most encoders
// saturated without exhausting memory.
func EncodeWorkers() int {
	workers := 4
	if n, err := cpu.Counts(true); err == nil && n < workers {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// FindLatestScene returns the newest scene YAML in dir.
func FindLatestScene(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := strings.ToLower(f.Name())
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no scene files found in %s", dir)
	}

	return latestFile, nil
}

// GetBestH264Encoder probes ffmpeg for a hardware H.264 encoder, falling
// back to libx264.
func GetBestH264Encoder() string {
	encoders := []string{"h264_videotoolbox", "h264_nvenc"}

	cmd := exec.Command("ffmpeg", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}

	return "libx264"
}

// PerfStats is a point-in-time snapshot of this process's resource use,
// reported at the end of a render when stats are requested.
type PerfStats struct {
	CPUPercent float64
	RSSBytes   uint64
	Cores      int
}

// SampleStats collects process CPU and memory figures. Errors are
// swallowed: stats are informational and must never fail a render.
func SampleStats() PerfStats {
	var stats PerfStats

	if n, err := cpu.Counts(true); err == nil {
		stats.Cores = n
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats
	}
	if pct, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = pct
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	return stats
}

// String formats the snapshot for the performance report.
func (s PerfStats) String() string {
	return fmt.Sprintf("CPU: %.1f%% of %d cores | RSS: %.1f MiB",
		s.CPUPercent, s.Cores, float64(s.RSSBytes)/(1024*1024))
}
