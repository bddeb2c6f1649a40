package countme

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Entry pairs a type's display name with its counts.
type Entry struct {
	Name   string
	Counts Counts
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e Entry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", e.Name).EmbedObject(e.Counts)
}

// AllCounts is a snapshot of counts for a set of types, sorted by type name.
type AllCounts struct {
	entries  []Entry
	disabled bool
}

// NewAllCounts builds a report from entries. Entries are sorted by name; entries
// sharing a name keep their relative order.
func NewAllCounts(entries []Entry) AllCounts {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return AllCounts{entries: out}
}

// Entries returns a copy of the report entries.
func (a AllCounts) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of types in the report.
func (a AllCounts) Len() int { return len(a.entries) }

// Total returns the counts summed across all entries.
func (a AllCounts) Total() Counts {
	var t Counts
	for _, e := range a.entries {
		t = t.Add(e.Counts)
	}
	return t
}

const (
	totalRowName = "total"
	numWidth     = 12
)

// String renders the report as a fixed-width table.
func (a AllCounts) String() string {
	var b strings.Builder
	_, _ = a.WriteTo(&b)
	return b.String()
}

// WriteTo writes the table rendering of the report to w.
//
//	name                            live     max_live        total
//	example.com/app.Gadget             1            1            1
//	example.com/app.Widget         1_000        1_500        2_000
//	total                          1_001        1_501        2_001
func (a AllCounts) WriteTo(w io.Writer) (int64, error) {
	if len(a.entries) == 0 {
		msg := "all counts are zero\n"
		if a.disabled {
			msg = "counts are disabled\n"
		}
		n, err := io.WriteString(w, msg)
		return int64(n), err
	}

	width := utf8.RuneCountInString("name")
	for _, e := range a.entries {
		if n := utf8.RuneCountInString(e.Name); n > width {
			width = n
		}
	}

	var b strings.Builder
	writeRow(&b, width, "name", "live", "max_live", "total")
	for _, e := range a.entries {
		writeCounts(&b, width, e.Name, e.Counts)
	}
	writeCounts(&b, width, totalRowName, a.Total())

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func writeCounts(b *strings.Builder, width int, name string, c Counts) {
	writeRow(b, width, name, sep(c.Live), sep(c.MaxLive), sep(c.Total))
}

func writeRow(b *strings.Builder, width int, name, live, maxLive, total string) {
	fmt.Fprintf(b, "%-*s  %*s %*s %*s\n", width, name, numWidth, live, numWidth, maxLive, numWidth, total)
}

// sep formats n with '_' between groups of three digits.
func sep(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('_')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// MarshalZerologArray implements zerolog.LogArrayMarshaler.
func (a AllCounts) MarshalZerologArray(arr *zerolog.Array) {
	for _, e := range a.entries {
		arr.Object(e)
	}
}

// Log emits one info event per type and one for the aggregate row.
func (a AllCounts) Log(l zerolog.Logger) {
	for _, e := range a.entries {
		l.Info().EmbedObject(e).Msg("instance counts")
	}
	l.Info().Str("type", totalRowName).Int("types", len(a.entries)).EmbedObject(a.Total()).Msg("instance counts")
}
