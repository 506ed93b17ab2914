package domain

// Timezone is one entry of the ticker clock rotation.
type Timezone struct {
	Name string `json:"name" yaml:"name"`
	Zone string `json:"zone" yaml:"zone"` // IANA name, e.g. "Asia/Tokyo"
}

// DefaultTimezones is the ticker clock rotation used when none is configured.
func DefaultTimezones() []Timezone {
	return []Timezone{
		{Name: "Los Angeles", Zone: "America/Los_Angeles"},
		{Name: "New York", Zone: "America/New_York"},
		{Name: "Antofagasta", Zone: "America/Santiago"},
		{Name: "UTC", Zone: "UTC"},
		{Name: "Berlin", Zone: "Europe/Berlin"},
		{Name: "Kyiv", Zone: "Europe/Kyiv"},
		{Name: "Tokyo", Zone: "Asia/Tokyo"},
	}
}
