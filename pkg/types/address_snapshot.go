package types

import "strings"

// AddressSnapshot is the delivery address denormalized onto an order at
// checkout time. Orders keep their own copy so later edits to the customer
// address book never rewrite history.
type AddressSnapshot struct {
	CEP          string `json:"cep"`
	Street       string `json:"logradouro"`
	Number       string `json:"numero"`
	Complement   string `json:"complemento,omitempty"`
	Neighborhood string `json:"bairro"`
	City         string `json:"cidade"`
	State        string `json:"uf"`
}

// IsZero reports whether no address fields are populated.
func (a AddressSnapshot) IsZero() bool {
	return a.CEP == "" && a.Street == "" && a.City == "" && a.State == ""
}

// Validate checks the fields an order cannot ship without.
func (a AddressSnapshot) Validate() error {
	missing := []string{}
	if strings.TrimSpace(a.CEP) == "" {
		missing = append(missing, "cep")
	}
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "logradouro")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "cidade")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "uf")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// MissingFieldsError lists address fields absent from a snapshot.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "address missing fields: " + strings.Join(e.Fields, ", ")
}
