package inventory

import (
	"strings"

	"github.com/jhoicas/Inventario-costeo/internal/domain"
)

// Policy política de costeo. Variante cerrada: el valor cero no es una política válida,
// de modo que una configuración ausente o corrupta nunca se interpreta como FIFO en silencio.
type Policy uint8

const (
	PolicyFIFO Policy = iota + 1
	PolicyLIFO
	PolicyAverage
)

// DefaultPolicy se aplica solo cuando la empresa no tiene política registrada.
const DefaultPolicy = PolicyFIFO

// AllPolicies devuelve las políticas soportadas.
func AllPolicies() []Policy {
	return []Policy{PolicyFIFO, PolicyLIFO, PolicyAverage}
}

// ParsePolicy interpreta FIFO, LIFO o AVERAGE (sin distinguir mayúsculas).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FIFO":
		return PolicyFIFO, nil
	case "LIFO":
		return PolicyLIFO, nil
	case "AVERAGE":
		return PolicyAverage, nil
	}
	return 0, domain.ErrUnknownPolicy
}

// Valid indica si p es una de las políticas soportadas.
func (p Policy) Valid() bool {
	switch p {
	case PolicyFIFO, PolicyLIFO, PolicyAverage:
		return true
	}
	return false
}

func (p Policy) String() string {
	switch p {
	case PolicyFIFO:
		return "FIFO"
	case PolicyLIFO:
		return "LIFO"
	case PolicyAverage:
		return "AVERAGE"
	}
	return "UNKNOWN"
}

// MarshalText serializa la política como texto (JSON, query params).
func (p Policy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, domain.ErrUnknownPolicy
	}
	return []byte(p.String()), nil
}

// UnmarshalText interpreta la política desde texto.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
