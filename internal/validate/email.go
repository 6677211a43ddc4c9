package validate

import (
	"net/mail"
	"strings"
)

// Email validates a field that should contain an email address.
func Email(name string, value string) ValidationRule {
	return email{name: name, value: value}
}

type email struct {
	name  string
	value string
}

func (e email) Validate() *Failure {
	if e.value == "" {
		return nil
	}
	addr, err := mail.ParseAddress(e.value)
	if err != nil {
		return fail(e.name, "dirección de email inválida")
	}
	if addr.Name != "" {
		return fail(e.name, "la dirección de email no debe contener un nombre")
	}
	if addr.Address != e.value {
		return fail(e.name, "la dirección de email no debe contener caracteres adicionales")
	}
	domain := addr.Address[strings.LastIndex(addr.Address, "@")+1:]
	if !strings.Contains(domain, ".") {
		return fail(e.name, "el dominio del email debe contener al menos un '.'")
	}
	return nil
}
