package util

import (
	"fmt"
	"math"
)

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// Human formats a byte count with binary units, e.g. "1.50 MB".
func Human(n int64) string {
	if n > -1024 && n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	v, unit := float64(n), ""
	for _, u := range byteUnits {
		v /= 1024
		unit = u
		if math.Abs(v) < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}
