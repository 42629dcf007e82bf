package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// NATIONAL HOLIDAYS - Brazilian federal calendar
// =============================================================================

var fixedNational = []struct {
	month time.Month
	day   int
	name  string
}{
	{time.January, 1, "Confraternização Universal"},
	{time.April, 21, "Tiradentes"},
	{time.May, 1, "Dia do Trabalho"},
	{time.September, 7, "Independência do Brasil"},
	{time.October, 12, "Nossa Senhora Aparecida"},
	{time.November, 2, "Finados"},
	{time.November, 15, "Proclamação da República"},
	{time.November, 20, "Dia Nacional de Zumbi e da Consciência Negra"},
	{time.December, 25, "Natal"},
}

// NationalHolidays returns the federal holidays for year. Fixed-date holidays
// are recurring, so saving them once covers every year; the Easter-based ones
// (Carnival, Good Friday, Corpus Christi) move and are one-off entries for
// year only.
func NationalHolidays(year int) Holidays {
	hs := make(Holidays, 0, len(fixedNational)+4)
	for _, f := range fixedNational {
		hs = append(hs, Holiday{
			ID:        fmt.Sprintf("br-%02d%02d", f.month, f.day),
			Date:      NewTimePoint(year, f.month, f.day),
			Name:      f.name,
			Recurring: true,
		})
	}

	easter := Easter(year)
	movable := []struct {
		offset int
		slug   string
		name   string
	}{
		{-48, "carnival-monday", "Carnaval"},
		{-47, "carnival", "Carnaval"},
		{-2, "good-friday", "Sexta-feira Santa"},
		{60, "corpus-christi", "Corpus Christi"},
	}
	for _, m := range movable {
		hs = append(hs, Holiday{
			ID:   fmt.Sprintf("br-%d-%s", year, m.slug),
			Date: easter.AddDays(m.offset),
			Name: m.name,
		})
	}
	return hs
}

// Easter returns Easter Sunday of the Gregorian year (anonymous Gregorian
// algorithm).
func Easter(year int) TimePoint {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return NewTimePoint(year, time.Month(month), day)
}
