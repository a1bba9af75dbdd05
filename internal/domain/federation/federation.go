// Package federation resolves FIDE federation codes to flag markers.
package federation

import "strings"

// Marker is what a federation code renders as.
type Marker struct {
	Code     string // normalised FIDE code
	Text     string // flag emoji when resolved, the raw code otherwise
	Resolved bool
}

// FIDE uses IOC-style codes; flags are keyed by ISO 3166 alpha-2.
var fideToISO = map[string]string{
	"ALB": "AL", "ALG": "DZ", "AND": "AD", "ANG": "AO", "ARG": "AR", "ARM": "AM", "AUS": "AU",
	"AUT": "AT", "AZE": "AZ", "BAN": "BD", "BEL": "BE", "BIH": "BA", "BLR": "BY", "BOL": "BO",
	"BRA": "BR", "BUL": "BG", "CAN": "CA", "CHI": "CL", "CHN": "CN", "COL": "CO", "CRC": "CR",
	"CRO": "HR", "CUB": "CU", "CYP": "CY", "CZE": "CZ", "DEN": "DK", "DOM": "DO", "ECU": "EC",
	"EGY": "EG", "ESA": "SV", "ESP": "ES", "EST": "EE", "FAI": "FO", "FIN": "FI", "FRA": "FR",
	"GEO": "GE", "GER": "DE", "GRE": "GR", "GUA": "GT", "HKG": "HK", "HUN": "HU", "INA": "ID",
	"IND": "IN", "IRI": "IR", "IRL": "IE", "IRQ": "IQ", "ISL": "IS", "ISR": "IL", "ITA": "IT",
	"JOR": "JO", "JPN": "JP", "KAZ": "KZ", "KGZ": "KG", "KOR": "KR", "KOS": "XK", "LAT": "LV",
	"LBN": "LB", "LTU": "LT", "LUX": "LU", "MAR": "MA", "MAS": "MY", "MDA": "MD", "MEX": "MX",
	"MGL": "MN", "MKD": "MK", "MLT": "MT", "MNC": "MC", "MNE": "ME", "NED": "NL", "NGR": "NG",
	"NOR": "NO", "NZL": "NZ", "PAR": "PY", "PER": "PE", "PHI": "PH", "POL": "PL", "POR": "PT",
	"QAT": "QA", "ROU": "RO", "RSA": "ZA", "RUS": "RU", "SGP": "SG", "SLO": "SI", "SRB": "RS",
	"SUI": "CH", "SVK": "SK", "SWE": "SE", "SYR": "SY", "TJK": "TJ", "TKM": "TM", "TPE": "TW",
	"TUN": "TN", "TUR": "TR", "UAE": "AE", "UKR": "UA", "URU": "UY", "USA": "US", "UZB": "UZ",
	"VEN": "VE", "VIE": "VN", "ZAM": "ZM", "ZIM": "ZW",
}

// Home nations use subdivision flag tag sequences.
var subdivisionFlags = map[string]string{
	"ENG": "gbeng",
	"SCO": "gbsct",
	"WLS": "gbwls",
}

// Resolve maps a FIDE federation code to its flag. Unknown codes, including
// FID for players under the FIDE flag, come back as the raw code.
func Resolve(code string) Marker {
	c := strings.ToUpper(strings.TrimSpace(code))
	if iso, ok := fideToISO[c]; ok {
		if flag, ok := regionalFlag(iso); ok {
			return Marker{Code: c, Text: flag, Resolved: true}
		}
	}
	if tag, ok := subdivisionFlags[c]; ok {
		return Marker{Code: c, Text: tagFlag(tag), Resolved: true}
	}
	return Marker{Code: c, Text: c}
}

// ISO returns the alpha-2 country for a FIDE code.
func ISO(code string) (string, bool) {
	iso, ok := fideToISO[strings.ToUpper(strings.TrimSpace(code))]
	return iso, ok
}

func regionalFlag(iso string) (string, bool) {
	if len(iso) != 2 {
		return "", false
	}
	var b strings.Builder
	for _, r := range iso {
		if r < 'A' || r > 'Z' {
			return "", false
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String(), true
}

func tagFlag(tag string) string {
	var b strings.Builder
	b.WriteRune(0x1F3F4) // black flag
	for _, r := range tag {
		b.WriteRune(0xE0000 + r)
	}
	b.WriteRune(0xE007F) // cancel tag
	return b.String()
}
