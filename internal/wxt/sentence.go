package wxt

import (
	"regexp"
	"strconv"
)

// The station emits one 0R0 sentence per sampling interval:
//
//	0R0,Dm=045D,Sm=1.7K,Ta=22.9C,Ua=38.7P,Pa=1012.9H,Rc=0.00M,Th=25.6C,Vh=12.0N
//
// Field order and unit letters are fixed. Anything that deviates from the
// grammar (missing field, wrong unit, extra whitespace, reordered fields)
// is not a sentence and is discarded by the caller.
var sentenceRegexp = regexp.MustCompile(`^0R0,` +
	`Dm=(\d+)D,` +
	`Sm=(\d+\.\d)K,` +
	`Ta=(\d+\.\d)C,` +
	`Ua=(\d+\.\d)P,` +
	`Pa=(\d+\.\d)H,` +
	`Rc=(\d+\.\d\d)M,` +
	`Th=(\d+\.\d)C,` +
	`Vh=(\d+\.\d)N$`)

// ParseSentence decodes a single line (without its CRLF terminator) into a
// Measurement. The second return value is false when the line does not
// match the sentence grammar; that is not an error condition. Date is left
// zero for the caller to stamp.
func ParseSentence(line string) (Measurement, bool) {
	groups := sentenceRegexp.FindStringSubmatch(line)
	if groups == nil {
		return Measurement{}, false
	}

	fields := make([]float64, len(groups)-1)
	for i, g := range groups[1:] {
		v, err := strconv.ParseFloat(g, 64)
		if err != nil {
			return Measurement{}, false
		}
		fields[i] = v
	}

	return Measurement{
		WindDirection:     fields[0],
		WindSpeed:         fields[1],
		Temperature:       fields[2],
		RelativeHumidity:  fields[3],
		Pressure:          fields[4],
		AccumulatedRain:   fields[5],
		HeaterTemperature: fields[6],
		HeaterVoltage:     fields[7],
	}, true
}
