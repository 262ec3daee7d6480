package firmware

import (
	"fmt"

	"github.com/sweeney/binw2-sim/internal/topology"
)

// Indicator LEDs of the binw2 board.
const (
	LEDAM topology.LED = 13
	LEDPM topology.LED = 14
)

// ReadTime decodes a set of lit LEDs back into the time a binw2 watch shows.
// ok is false when the LEDs do not form a valid time.
func ReadTime(lit []topology.LED) (hour, minute int, pm bool, ok bool) {
	on := make(map[topology.LED]bool, len(lit))
	for _, l := range lit {
		on[l] = true
	}
	digit := func(col []topology.LED) int {
		v := 0
		for bit, led := range col {
			if on[led] {
				v |= 1 << bit
			}
		}
		return v
	}

	hour = digit(hourTens)*10 + digit(hourUnits)
	minute = digit(minuteTens)*10 + digit(minuteUnit)
	pm = on[LEDPM]
	if on[LEDAM] == on[LEDPM] {
		return hour, minute, pm, false
	}
	if hour < 1 || hour > 12 || minute > 59 {
		return hour, minute, pm, false
	}
	return hour, minute, pm, true
}

// FormatTime renders a watch time as "HH:MM AM".
func FormatTime(hour, minute int, pm bool) string {
	suffix := "AM"
	if pm {
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", hour, minute, suffix)
}
