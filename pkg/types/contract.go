package types

import "strconv"

// Locator parts. A collection locator has the form
// content://<authority>/decors and an item locator appends /<id>.
const (
	Scheme     = "content"
	Authority  = "com.example.android.decorsinventory"
	PathDecors = "decors"
)

// CollectionLocator is the canonical locator for the whole decors collection.
const CollectionLocator = Scheme + "://" + Authority + "/" + PathDecors

// Type tags returned for collection and item locators.
const (
	CollectionTypePrefix = "vnd.cursor.dir"
	ItemTypePrefix       = "vnd.cursor.item"

	CollectionType = CollectionTypePrefix + "/" + Authority + "/" + PathDecors
	ItemType       = ItemTypePrefix + "/" + Authority + "/" + PathDecors
)

// SchemaVersion is the current version of the persisted schema. Bumping it
// drops and recreates the decors table on the next attach.
const SchemaVersion = 1

// DecorsTable is the name of the single table.
const DecorsTable = "decors"

// Column names of the decors table.
const (
	ColumnID            = "id"
	ColumnName          = "name"
	ColumnDescription   = "description"
	ColumnMaterial      = "material"
	ColumnHeight        = "height"
	ColumnPrice         = "price"
	ColumnQuantity      = "quantity"
	ColumnSupplierName  = "supplier_name"
	ColumnSupplierEmail = "supplier_email"
	ColumnImage         = "image"
)

// Columns lists every column in table order.
var Columns = []string{
	ColumnID,
	ColumnName,
	ColumnDescription,
	ColumnMaterial,
	ColumnHeight,
	ColumnPrice,
	ColumnQuantity,
	ColumnSupplierName,
	ColumnSupplierEmail,
	ColumnImage,
}

var knownColumns = func() map[string]bool {
	m := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		m[c] = true
	}
	return m
}()

// IsColumn reports whether name is a column of the decors table.
func IsColumn(name string) bool {
	return knownColumns[name]
}

// ItemLocator returns the canonical locator for the decor with the given id.
func ItemLocator(id int64) string {
	return CollectionLocator + "/" + strconv.FormatInt(id, 10)
}
