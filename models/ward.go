package models

// Ward is an administrative sub-region. The count fields are a view computed
// from the current issue set; wards themselves are never persisted.
type Ward struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TotalIssues      int    `json:"totalIssues,omitempty"`
	ResolvedIssues   int    `json:"resolvedIssues,omitempty"`
	PendingIssues    int    `json:"pendingIssues,omitempty"`
	InProgressIssues int    `json:"inProgressIssues,omitempty"`
}

// WardAll is the pseudo ward id that selects every ward.
const WardAll = "all"

// Wards is the fixed ward directory, in display order.
var Wards = []Ward{
	{ID: "ward-32", Name: "Ward 32-Warje popular Nagar"},
	{ID: "ward-33", Name: "Ward 33-Shivne Khadakwasla"},
	{ID: "ward-34", Name: "Ward 34-Narhe Wadgaon Budruk"},
	{ID: "ward-35", Name: "Ward 35-Suncity-Manik Baug"},
	{ID: "ward-36", Name: "Ward 36-Sahkarnagar Padmavati"},
	{ID: "ward-37", Name: "Ward 37-Dhankawadi Katraj Dairy"},
	{ID: "ward-38", Name: "Ward 38-Ambegaon Katraj"},
	{ID: "ward-39", Name: "Ward 39-Upper Super Indiranagar"},
}

// FindWard looks up a ward by id.
func FindWard(id string) (Ward, bool) {
	for _, w := range Wards {
		if w.ID == id {
			return w, true
		}
	}
	return Ward{}, false
}

// IsValidWard checks if the id names a directory entry.
func IsValidWard(id string) bool {
	_, ok := FindWard(id)
	return ok
}
