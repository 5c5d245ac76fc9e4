package upstream

// Exploit is one entry of the executor status listing. Only the fields the
// pipeline reads are modelled; the raw listing is proxied untouched.
type Exploit struct {
	Title          string   `json:"title"`
	Version        string   `json:"version,omitempty"`
	UpdateStatus   bool     `json:"updateStatus,omitempty"`
	RbxVersion     string   `json:"rbxversion,omitempty"`
	SuncPercentage *float64 `json:"suncPercentage,omitempty"`
	UncPercentage  *float64 `json:"uncPercentage,omitempty"`
	UpdatedDate    string   `json:"updatedDate,omitempty"`
	Sunc           *SuncRef `json:"sunc,omitempty"`
}

// SuncRef carries the credentials needed to pull the deep report.
type SuncRef struct {
	Scrap string `json:"suncScrap"`
	Key   string `json:"suncKey"`
}

// HasDeepReport reports whether the entry carries deep report credentials.
func (e *Exploit) HasDeepReport() bool {
	return e != nil && e.Sunc != nil && e.Sunc.Scrap != "" && e.Sunc.Key != ""
}

// Listing is a decoded status listing plus the exact bytes it came from.
type Listing struct {
	Raw      []byte
	Exploits []Exploit
	Mirror   string
}
