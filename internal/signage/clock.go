package signage

import (
	"fmt"
	"time"
)

var (
	shortDays   = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}
	shortMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}
)

type ClockLabels struct {
	Time string `json:"time"`
	Date string `json:"date"`
}

// Labels renders "15:04" and a short Spanish date such as "lun, 05 ene".
func Labels(t time.Time) ClockLabels {
	return ClockLabels{
		Time: t.Format("15:04"),
		Date: fmt.Sprintf("%s, %02d %s", shortDays[t.Weekday()], t.Day(), shortMonths[t.Month()-1]),
	}
}
