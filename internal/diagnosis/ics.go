package diagnosis

import (
	"fmt"
	"strings"
	"time"

	dbtypes "github.com/gloova-ai/gloova-backend/pkg/db/types"
)

// ProtocolICS renders the treatment schedule as an iCalendar document of
// all-day events, one per protocol day, anchored at startDate (day 1).
func ProtocolICS(protocol dbtypes.ProtocolDays, startDate time.Time) []byte {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//Gloova.AI//Hair Protocol//PT\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")

	for _, day := range protocol {
		date := startDate.AddDate(0, 0, day.Day-1).Format("20060102")
		b.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&b, "SUMMARY:Gloova - %s (Dia %d)\r\n", day.Type, day.Day)
		fmt.Fprintf(&b, "DTSTART;VALUE=DATE:%s\r\n", date)
		fmt.Fprintf(&b, "DTEND;VALUE=DATE:%s\r\n", date)
		fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", escapeICSText(day.Instruction))
		b.WriteString("STATUS:CONFIRMED\r\n")
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")
	return []byte(b.String())
}

// escapeICSText escapes the characters RFC 5545 treats specially in text
// values.
func escapeICSText(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(text)
}
