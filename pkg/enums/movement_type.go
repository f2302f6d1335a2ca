package enums

import "fmt"

// MovementType classifies an inventory ledger entry. Entrada adds stock,
// saida removes it, ajuste carries a signed correction.
type MovementType string

const (
	MovementTypeEntrada MovementType = "entrada"
	MovementTypeSaida   MovementType = "saida"
	MovementTypeAjuste  MovementType = "ajuste"
)

var validMovementTypes = []MovementType{
	MovementTypeEntrada,
	MovementTypeSaida,
	MovementTypeAjuste,
}

// String implements fmt.Stringer.
func (m MovementType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementType.
func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// Sign returns the multiplier applied to the quantity when deriving stock.
// Ajuste quantities are stored signed, so they pass through unchanged.
func (m MovementType) Sign() int {
	switch m {
	case MovementTypeEntrada:
		return 1
	case MovementTypeSaida:
		return -1
	default:
		return 1
	}
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
