package idio

import "github.com/xyproto/env/v2"

// Process-wide dials.  The environment seeds them at start-up; the
// setters exist for the language-level bindings
// (idio-print-conversion-format and friends).

var (
	gcDebug        bool
	gcStatsEnabled bool
	gcStatsFile    string

	// printConversionFormat is one of 'd' 'e' 'f' 'g' 's' 'x' 'X'
	// 'o' 'u' 'b', or 0 when unset.  Numeric printers read it
	// before formatting.
	printConversionFormat rune

	// printConversionPrecision is -1 when unset; the real-number
	// printer then falls back to its default of 6.
	printConversionPrecision int
)

func initConfig() {
	gcDebug = env.Bool("IDIO_GC_DEBUG")
	gcStatsEnabled = env.Bool("IDIO_GC_STATS")
	gcStatsFile = env.Str("IDIO_GC_STATS_FILE", "idio-gc-stats")

	printConversionPrecision = env.Int("IDIO_PCP", -1)
	printConversionFormat = 0
	if pcf := env.Str("IDIO_PCF", ""); pcf != "" {
		printConversionFormat = []rune(pcf)[0]
	}
}

// SetPrintConversionFormat sets the process-wide conversion format
// dial.  Zero clears it.
func SetPrintConversionFormat(f rune) {
	printConversionFormat = f
}

// PrintConversionFormat returns the current format dial, 0 if unset.
func PrintConversionFormat() rune {
	return printConversionFormat
}

// SetPrintConversionPrecision sets the process-wide precision dial.
// Negative clears it.
func SetPrintConversionPrecision(p int) {
	printConversionPrecision = p
}

// PrintConversionPrecision returns the current precision dial, -1 if
// unset.
func PrintConversionPrecision() int {
	return printConversionPrecision
}
