//go:build !linux

package device

func totalMemoryGB() (float64, bool) { return 0, false }

func platformLevel() (int, bool) { return 0, false }

func parseRelease(string) (int, bool) { return 0, false }

func modernGraphics() bool { return false }

func lowPowerMode() bool { return false }
