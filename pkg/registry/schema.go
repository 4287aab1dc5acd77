// pkg/registry/schema.go
package registry

// Activity categories.
const (
	CategoryTrade        = "trade"
	CategoryIntellectual = "intellectual"
)

// Catalog is the reference list of activity codes a project may require and
// a company may offer.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	Code        string   `json:"code"`
	Label       string   `json:"label"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
