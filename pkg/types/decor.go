package types

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Material is the enumerated material of a decor.
type Material int

// Material values. These are persisted as integers; do not renumber.
const (
	MaterialUnspecified Material = 0
	MaterialGlass       Material = 1
	MaterialWood        Material = 2
	MaterialMetal       Material = 3
	MaterialFabric      Material = 4
)

var materialNames = map[Material]string{
	MaterialUnspecified: "unspecified",
	MaterialGlass:       "glass",
	MaterialWood:        "wood",
	MaterialMetal:       "metal",
	MaterialFabric:      "fabric",
}

// IsValidMaterial reports whether m is one of the enumerated materials.
func IsValidMaterial(m Material) bool {
	_, ok := materialNames[m]
	return ok
}

// String returns the lowercase material name, or the number for values
// outside the enumeration.
func (m Material) String() string {
	if name, ok := materialNames[m]; ok {
		return name
	}
	return strconv.Itoa(int(m))
}

// ParseMaterial accepts a material name (case-insensitive) or its number.
// Numbers are returned as-is so that validation, not parsing, rejects
// values outside the enumeration.
func ParseMaterial(s string) (Material, error) {
	s = strings.TrimSpace(s)
	for m, name := range materialNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: ColumnMaterial, Reason: "unknown material " + strconv.Quote(s)}
	}
	return Material(n), nil
}

// Decor is one row of the decors table.
type Decor struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Material      Material        `json:"material"`
	Height        int             `json:"height"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	SupplierName  string          `json:"supplier_name,omitempty"`
	SupplierEmail string          `json:"supplier_email,omitempty"`
	Image         []byte          `json:"image,omitempty"`
}

// Values returns d as a partial record with every field present. The ID is
// not part of the result; identity is carried by the locator.
func (d *Decor) Values() DecorValues {
	return DecorValues{
		Name:          Ptr(d.Name),
		Description:   Ptr(d.Description),
		Material:      Ptr(d.Material),
		Height:        Ptr(d.Height),
		Price:         Ptr(d.Price),
		Quantity:      Ptr(d.Quantity),
		SupplierName:  Ptr(d.SupplierName),
		SupplierEmail: Ptr(d.SupplierEmail),
		Image:         Ptr(d.Image),
	}
}

// DecorValues is a partial decor record. A nil field is absent: it is not
// validated on update and not written.
type DecorValues struct {
	Name          *string
	Description   *string
	Material      *Material
	Height        *int
	Price         *decimal.Decimal
	Quantity      *int
	SupplierName  *string
	SupplierEmail *string
	Image         *[]byte
}

// IsEmpty reports whether no field is present.
func (v DecorValues) IsEmpty() bool {
	return v.Name == nil && v.Description == nil && v.Material == nil &&
		v.Height == nil && v.Price == nil && v.Quantity == nil &&
		v.SupplierName == nil && v.SupplierEmail == nil && v.Image == nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
