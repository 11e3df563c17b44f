package calendar

import (
	"regexp"
	"strings"
)

var airportCodePattern = regexp.MustCompile(`\b[A-Z]{3}\b`)

// airportCountry maps IATA airport codes to ISO country codes.
var airportCountry = map[string]string{
	"NRT": "JP", "HND": "JP", "KIX": "JP", "ITM": "JP", "CTS": "JP", "FUK": "JP", "OKA": "JP", "NGO": "JP",
	"LAX": "US", "SFO": "US", "SEA": "US", "JFK": "US", "EWR": "US", "ORD": "US", "DEN": "US", "HNL": "US", "SLC": "US", "BOS": "US",
	"YVR": "CA", "YYC": "CA", "YYZ": "CA", "YUL": "CA",
	"ICN": "KR", "GMP": "KR",
	"TPE": "TW", "HKG": "HK", "SIN": "SG", "BKK": "TH",
	"LHR": "GB", "LGW": "GB", "CDG": "FR", "FRA": "DE", "MUC": "DE", "ZRH": "CH", "GVA": "CH", "AMS": "NL", "FCO": "IT", "MXP": "IT",
	"SYD": "AU", "MEL": "AU", "AKL": "NZ", "ZQN": "NZ",
}

// cityCountry is matched as a case-insensitive substring, in order.
var cityCountry = []struct {
	city    string
	country string
}{
	{"tokyo", "JP"}, {"osaka", "JP"}, {"kyoto", "JP"}, {"sapporo", "JP"}, {"niseko", "JP"},
	{"hakuba", "JP"}, {"nagano", "JP"}, {"furano", "JP"}, {"hakodate", "JP"}, {"otaru", "JP"},
	{"vancouver", "CA"}, {"whistler", "CA"}, {"banff", "CA"}, {"calgary", "CA"}, {"toronto", "CA"},
	{"seattle", "US"}, {"san francisco", "US"}, {"los angeles", "US"}, {"new york", "US"},
	{"honolulu", "US"}, {"denver", "US"}, {"salt lake", "US"},
	{"seoul", "KR"}, {"busan", "KR"}, {"taipei", "TW"}, {"hong kong", "HK"}, {"singapore", "SG"},
	{"bangkok", "TH"}, {"london", "GB"}, {"paris", "FR"}, {"zurich", "CH"}, {"zermatt", "CH"},
	{"chamonix", "FR"}, {"sydney", "AU"}, {"queenstown", "NZ"}, {"auckland", "NZ"},
}

// LocationFlag derives the per-day location tag for a raw location: a known
// airport code wins, then a known city, then the trimmed location itself.
func LocationFlag(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	for _, code := range airportCodePattern.FindAllString(location, -1) {
		if country, ok := airportCountry[code]; ok {
			return country
		}
	}
	lower := strings.ToLower(location)
	for _, c := range cityCountry {
		if strings.Contains(lower, c.city) {
			return c.country
		}
	}
	return location
}
