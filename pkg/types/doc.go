// Package types defines the decors contract (table, columns, locators,
// materials), the Decor record and its typed partial form, validation rules,
// the error taxonomy, and the interfaces shared by the storage engine, the
// provider, and their callers.
package types
