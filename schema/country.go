package schema

// Country is a tracked location of the dataset.
type Country struct {
	Name    string `json:"name" bson:"name"`
	ISOCode string `json:"iso_code" bson:"iso_code"`
}

// DefaultTrackedCountries is the default comparison set. Continent and
// world aggregates in the source feed are never tracked.
var DefaultTrackedCountries = []Country{
	{Name: "United States", ISOCode: "USA"},
	{Name: "India", ISOCode: "IND"},
	{Name: "Brazil", ISOCode: "BRA"},
	{Name: "United Kingdom", ISOCode: "GBR"},
	{Name: "Germany", ISOCode: "DEU"},
	{Name: "Kenya", ISOCode: "KEN"},
	{Name: "South Africa", ISOCode: "ZAF"},
}

// CountryByISO finds a tracked country by its ISO code.
func CountryByISO(countries []Country, iso string) (Country, bool) {
	for _, c := range countries {
		if c.ISOCode == iso {
			return c, true
		}
	}
	return Country{}, false
}

// TrackedNames returns a name -> ISO code lookup for the given set.
func TrackedNames(countries []Country) map[string]string {
	m := make(map[string]string, len(countries))
	for _, c := range countries {
		m[c.Name] = c.ISOCode
	}
	return m
}

// FilterTracked keeps the countries whose ISO codes are listed. An empty
// list keeps the whole set.
func FilterTracked(countries []Country, isoCodes []string) []Country {
	if len(isoCodes) == 0 {
		return countries
	}

	keep := make(map[string]bool, len(isoCodes))
	for _, iso := range isoCodes {
		keep[iso] = true
	}

	filtered := make([]Country, 0, len(isoCodes))
	for _, c := range countries {
		if keep[c.ISOCode] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
