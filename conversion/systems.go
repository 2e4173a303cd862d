package conversion

// PostgresBytes is the byte-size system used by PostgreSQL settings, in
// powers of 1024 with the base unit in bytes.
var PostgresBytes = MustSystem("postgres-bytes",
	Unit{Factor: 1 << 50, Suffix: "PB"},
	Unit{Factor: 1 << 40, Suffix: "TB"},
	Unit{Factor: 1 << 30, Suffix: "GB"},
	Unit{Factor: 1 << 20, Suffix: "MB"},
	Unit{Factor: 1 << 10, Suffix: "kB"},
	Unit{Factor: 1, Suffix: "B"},
)

// PostgresTime is the duration system used by PostgreSQL settings, with
// the base unit in milliseconds. "ms" precedes "s" so that a
// millisecond value is never read as seconds.
var PostgresTime = MustSystem("postgres-time",
	Unit{Factor: 1000 * 60 * 60 * 24, Suffix: "d"},
	Unit{Factor: 1000 * 60 * 60, Suffix: "h"},
	Unit{Factor: 1000 * 60, Suffix: "min"},
	Unit{Factor: 1, Suffix: "ms"},
	Unit{Factor: 1000, Suffix: "s"},
)
