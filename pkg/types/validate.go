package types

import "strings"

// ValidateInsert checks v against the insert rules: name, material, price
// and quantity are required; height, price and quantity must not be
// negative; material must be enumerated. Fields are checked in column order
// and the first violation is returned.
func (v DecorValues) ValidateInsert() error {
	if v.Name == nil {
		return required(ColumnName)
	}
	if err := v.checkName(); err != nil {
		return err
	}
	if v.Material == nil {
		return required(ColumnMaterial)
	}
	if err := v.checkMaterial(); err != nil {
		return err
	}
	if err := v.checkHeight(); err != nil {
		return err
	}
	if v.Price == nil {
		return required(ColumnPrice)
	}
	if err := v.checkPrice(); err != nil {
		return err
	}
	if v.Quantity == nil {
		return required(ColumnQuantity)
	}
	return v.checkQuantity()
}

// ValidateUpdate checks only the fields present in v. Description, supplier
// name, supplier email and image are unconstrained.
func (v DecorValues) ValidateUpdate() error {
	for _, check := range []func() error{
		v.checkName,
		v.checkMaterial,
		v.checkHeight,
		v.checkPrice,
		v.checkQuantity,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v DecorValues) checkName() error {
	if v.Name != nil && strings.TrimSpace(*v.Name) == "" {
		return &ValidationError{Field: ColumnName, Reason: "decor requires a name"}
	}
	return nil
}

func (v DecorValues) checkMaterial() error {
	if v.Material != nil && !IsValidMaterial(*v.Material) {
		return &ValidationError{Field: ColumnMaterial, Reason: "decor requires valid material, got " + v.Material.String()}
	}
	return nil
}

func (v DecorValues) checkHeight() error {
	if v.Height != nil && *v.Height < 0 {
		return &ValidationError{Field: ColumnHeight, Reason: "height cannot be negative"}
	}
	return nil
}

func (v DecorValues) checkPrice() error {
	if v.Price != nil && v.Price.IsNegative() {
		return &ValidationError{Field: ColumnPrice, Reason: "price must be positive or 0"}
	}
	return nil
}

func (v DecorValues) checkQuantity() error {
	if v.Quantity != nil && *v.Quantity < 0 {
		return &ValidationError{Field: ColumnQuantity, Reason: "quantity must be positive or 0"}
	}
	return nil
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "required"}
}
