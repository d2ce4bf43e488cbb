package dataset

// Field bounds enforced on register and update.
const (
	MaxNameLen        = 100
	MaxMetadataURLLen = 256
	MaxCategoryLen    = 50
)

// Dataset represents a listed dataset on the marketplace
type Dataset struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	MetadataURL string `json:"metadata_url"`
	Category    string `json:"category"`
	PricePerUse uint64 `json:"price_per_use"`
	AccessCount uint64 `json:"access_count"`
	Active      bool   `json:"active"`
	CreatedAt   uint64 `json:"created_at"`
}
