package domain

import (
	"math"
	"strconv"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with base-1024 units, at most two decimals and no trailing zeros.
func FormatFileSize(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}

	f := float64(n)
	i := int(math.Floor(math.Log(f) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	size := math.Round(f/math.Pow(1024, float64(i))*100) / 100

	return strconv.FormatFloat(size, 'f', -1, 64) + " " + sizeUnits[i]
}
