package result

// Warning is a server-reported diagnostic attached to a Result, delivered
// out of band via a Notice rather than as a row (spec §3 "Warning").
type Warning struct {
	IsNote bool
	Code   uint32
	Text   string
}

func newWarning(level uint32, code uint32, text string) Warning {
	const levelNote = 1
	return Warning{IsNote: level == levelNote, Code: code, Text: text}
}
