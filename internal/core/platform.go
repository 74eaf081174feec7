package core

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
)

// SupportedOS reports whether the tool is running on macOS. The location
// catalog is written against macOS filesystem conventions, so every other
// platform is refused at startup.
func SupportedOS() bool {
	return runtime.GOOS == "darwin"
}

// MacOSVersionString returns a human-readable macOS version string.
// Examples: "macOS Sonoma 14.5 (kernel 23.5.0)", "macOS Sequoia 15.1 (kernel 24.1.0)"
func MacOSVersionString() string {
	info, err := host.Info()
	if err != nil || info.PlatformVersion == "" {
		return "macOS (version unknown)"
	}

	var name string
	switch versionMajor(info.PlatformVersion) {
	case 26:
		name = "macOS Tahoe"
	case 15:
		name = "macOS Sequoia"
	case 14:
		name = "macOS Sonoma"
	case 13:
		name = "macOS Ventura"
	case 12:
		name = "macOS Monterey"
	case 11:
		name = "macOS Big Sur"
	default:
		name = "macOS"
	}

	return fmt.Sprintf("%s %s (kernel %s)", name, info.PlatformVersion, info.KernelVersion)
}

func versionMajor(version string) int {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	return n
}

// DiskFree returns the free bytes on the volume that contains path.
func DiskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %s: %w", path, err)
	}
	return usage.Free, nil
}
