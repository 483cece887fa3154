// Package engine implements the condition-classification core: inclination
// computation, signal detection and the eight-state condition model. It is
// pure computation with no persistence or transport dependencies.
package engine

// Condition is one of the eight administrative states classifying a
// metric's trend.
type Condition string

const (
	ConditionPoder         Condition = "PODER"
	ConditionCambioDePoder Condition = "CAMBIO_DE_PODER"
	ConditionAfluencia     Condition = "AFLUENCIA"
	ConditionNormal        Condition = "NORMAL"
	ConditionEmergencia    Condition = "EMERGENCIA"
	ConditionPeligro       Condition = "PELIGRO"
	ConditionInexistencia  Condition = "INEXISTENCIA"
	ConditionSinDatos      Condition = "SIN_DATOS"
)

// AllConditions returns every condition value, including CAMBIO_DE_PODER
// which is operator-declared only and never assigned by the classifier.
func AllConditions() []Condition {
	return []Condition{
		ConditionPoder,
		ConditionCambioDePoder,
		ConditionAfluencia,
		ConditionNormal,
		ConditionEmergencia,
		ConditionPeligro,
		ConditionInexistencia,
		ConditionSinDatos,
	}
}

// ParseCondition validates a raw string against the condition set.
func ParseCondition(s string) (Condition, bool) {
	c := Condition(s)
	for _, known := range AllConditions() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Direction describes the sign of an inclination.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionFlat Direction = "FLAT"
)

// DirectionOf maps an inclination value to a direction.
func DirectionOf(inclination float64) Direction {
	switch {
	case inclination > 0:
		return DirectionUp
	case inclination < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}
