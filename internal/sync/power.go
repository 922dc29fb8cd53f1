package sync

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultLowBattery is the charge percentage under which periodic syncs are
// deferred.
const DefaultLowBattery = 20

// SysfsBattery reads the host battery charge from the kernel power-supply
// class. Hosts without a battery report not-low.
type SysfsBattery struct {
	// Root overrides the sysfs mount point in tests; empty means
	// /sys/class/power_supply.
	Root string
	// Threshold is the low-charge percentage; zero means DefaultLowBattery.
	Threshold int
}

func (b SysfsBattery) Low(_ context.Context) bool {
	root := b.Root
	if root == "" {
		root = "/sys/class/power_supply"
	}
	threshold := b.Threshold
	if threshold == 0 {
		threshold = DefaultLowBattery
	}

	supplies, err := os.ReadDir(root)
	if err != nil {
		return false
	}
	for _, s := range supplies {
		if !strings.HasPrefix(s.Name(), "BAT") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(root, s.Name(), "capacity"))
		if err != nil {
			continue
		}
		pct, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			continue
		}
		return pct < threshold
	}
	return false
}
