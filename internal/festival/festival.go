// Package festival answers whether a calendar date is a festival day,
// against a static yearly table. Festival days carry a multiplicative
// delivery delay in the heuristic model.
package festival

import "time"

const dateLayout = "2006-01-02"

var dates = map[string]string{
	"2025-01-01": "New Year's Day",
	"2025-01-14": "Makar Sankranti / Pongal",
	"2025-01-26": "Republic Day",
	"2025-02-26": "Maha Shivaratri",
	"2025-03-14": "Holi",
	"2025-03-31": "Eid al-Fitr",
	"2025-04-10": "Mahavir Jayanti",
	"2025-04-18": "Good Friday",
	"2025-05-12": "Buddha Purnima",
	"2025-06-07": "Eid al-Adha (Bakrid)",
	"2025-07-06": "Muharram",
	"2025-08-15": "Independence Day",
	"2025-08-16": "Janmashtami",
	"2025-09-05": "Milad-un-Nabi",
	"2025-10-02": "Gandhi Jayanti",
	"2025-10-20": "Diwali",
	"2025-11-05": "Guru Nanak Jayanti",
	"2025-12-25": "Christmas",
}

// IsFestival reports whether the local calendar date of t is a festival
// day.
func IsFestival(t time.Time) bool {
	_, ok := dates[t.Format(dateLayout)]
	return ok
}

// Name returns the festival name for the local calendar date of t, if
// any.
func Name(t time.Time) (string, bool) {
	name, ok := dates[t.Format(dateLayout)]
	return name, ok
}
