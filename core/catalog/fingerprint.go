package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"price-list/core/types"
)

// Fingerprint identifies catalog content. Two catalogs built from the
// same records, in any declaration order, share a fingerprint.
type Fingerprint [32]byte

// Hex returns the fingerprint as a hex string
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex digits, enough for display
func (f Fingerprint) Short() string {
	return f.Hex()[:12]
}

// String implements Stringer
func (f Fingerprint) String() string {
	return f.Short()
}

// Fingerprint returns the content hash of the catalog
func (c *Catalog) Fingerprint() Fingerprint {
	return c.fingerprint
}

func computeFingerprint(c *Catalog) (Fingerprint, error) {
	canonical := struct {
		Units      []types.Unit      `json:"units"`
		Categories []types.Category  `json:"categories"`
		Products   []types.Product   `json:"products"`
		PriceLists []types.PriceList `json:"price_lists"`
	}{
		Units:      c.units.Units(),
		Categories: c.categories.Categories(),
		Products:   c.Products(),
		PriceLists: c.PriceLists(),
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		return Fingerprint{}, err
	}
	return sha256.Sum256(data), nil
}
