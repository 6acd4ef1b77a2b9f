package paymentmethod

import (
	"strings"
)

// Method is a label only: the storefront records how the customer intends
// to pay, it does not process payments.
type Method struct {
	Name string
}

func (m Method) Code() string {
	return m.Name
}

func (m Method) Label() string {
	parts := strings.Split(m.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	Cash   Method
	Card   Method
	Online Method
}

var Methods = Enum{
	Cash:   Method{Name: "cash"},
	Card:   Method{Name: "card"},
	Online: Method{Name: "online"},
}

var All = []Method{
	Methods.Cash,
	Methods.Card,
	Methods.Online,
}

// ByName returns the method for a given name, or nil if not found
func ByName(name string) *Method {
	for _, m := range All {
		if m.Name == name {
			return &m
		}
	}
	return nil
}
