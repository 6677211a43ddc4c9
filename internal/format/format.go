// Package format renders times and durations for people to read.
package format

import (
	"fmt"
	"math"
	"time"
)

// HumanDuration returns a human-readable approximation of a duration
// (eg. "alrededor de un minuto", "4 horas", etc.).
// Modified version of github.com/docker/go-units.HumanDuration
func HumanDuration(d time.Duration) string {
	seconds := int(d.Seconds())

	switch {
	case seconds < 1:
		return "menos de un segundo"
	case seconds == 1:
		return "1 segundo"
	case seconds < 60:
		return fmt.Sprintf("%d segundos", seconds)
	}

	minutes := int(d.Minutes())
	switch {
	case minutes == 1:
		return "alrededor de un minuto"
	case minutes < 60:
		return fmt.Sprintf("%d minutos", minutes)
	}

	hours := int(math.Round(d.Hours()))
	switch {
	case hours == 1:
		return "alrededor de una hora"
	case hours < 48:
		return fmt.Sprintf("%d horas", hours)
	case hours < 24*7*2:
		return fmt.Sprintf("%d días", hours/24)
	case hours < 24*30*2:
		return fmt.Sprintf("%d semanas", hours/24/7)
	case hours < 24*365*2:
		return fmt.Sprintf("%d meses", hours/24/30)
	}

	return fmt.Sprintf("%d años", int(d.Hours())/24/365)
}

// HumanTime describes t relative to now, or returns zeroValue when t is the
// zero time.
func HumanTime(t time.Time, zeroValue string) string {
	return humanTimeSince(t, time.Now(), zeroValue)
}

func humanTimeSince(t, now time.Time, zeroValue string) string {
	if t.IsZero() {
		return zeroValue
	}

	delta := now.Sub(t)
	if delta < 0 {
		return "dentro de " + HumanDuration(-delta)
	}
	return "hace " + HumanDuration(delta)
}
