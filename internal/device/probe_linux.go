//go:build linux

package device

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const powerSupplyDir = "/sys/class/power_supply"

func totalMemoryGB() (float64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	total := uint64(info.Totalram) * unit
	if total == 0 {
		return 0, false
	}
	return float64(total) / (1024 * 1024 * 1024), true
}

// platformLevel encodes the kernel release as major*100+minor, so 6.8 → 608.
func platformLevel() (int, bool) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return 0, false
	}
	return parseRelease(unix.ByteSliceToString(uts.Release[:]))
}

func parseRelease(release string) (int, bool) {
	parts := strings.SplitN(release, ".", 3)
	if len(parts) < 2 {
		return 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minorDigits := parts[1]
	if i := strings.IndexFunc(minorDigits, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
		minorDigits = minorDigits[:i]
	}
	minor, err := strconv.Atoi(minorDigits)
	if err != nil {
		return 0, false
	}
	return major*100 + minor, true
}

// modernGraphics reports a DRM render node, which every Vulkan/GL 3+ capable
// driver exposes.
func modernGraphics() bool {
	nodes, err := filepath.Glob("/dev/dri/renderD*")
	return err == nil && len(nodes) > 0
}

// lowPowerMode is true when the host runs from a discharging battery.
func lowPowerMode() bool {
	entries, err := os.ReadDir(powerSupplyDir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		base := filepath.Join(powerSupplyDir, e.Name())
		if readTrimmed(filepath.Join(base, "type")) != "Battery" {
			continue
		}
		if readTrimmed(filepath.Join(base, "status")) == "Discharging" {
			return true
		}
	}
	return false
}

func readTrimmed(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
