package countme

import "github.com/rs/zerolog"

// Log emits the counts of every type tracked by the default registry, one event
// per type plus the aggregate row. Call it from a shutdown path to report
// counts at exit.
func Log(l zerolog.Logger) {
	GetAll().Log(l)
}
