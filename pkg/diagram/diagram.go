// Package diagram provides the diagram source model: type detection,
// normalization, and extraction of diagram blocks from mixed text.
//
// Diagram source is plain text in PlantUML markup. Values are never
// mutated in place; [Normalize] returns a new string. The diagram type is
// derived from the source on demand and is purely cosmetic downstream
// (filename tagging, synthesis templates); a misclassification never
// affects rendering correctness.
package diagram

// Type classifies diagram source into one of the PlantUML diagram kinds.
type Type string

// Supported diagram types.
const (
	TypeSequence   Type = "sequence"
	TypeClass      Type = "class"
	TypeComponent  Type = "component"
	TypeDeployment Type = "deployment"
	TypeActivity   Type = "activity"
	TypeState      Type = "state"
	TypeUsecase    Type = "usecase"
	TypeObject     Type = "object"
	TypeGeneric    Type = "generic"
)

// Types lists all diagram types in detection precedence order.
// The order matters: explicit start markers are matched against this list
// front to back before any keyword sniffing happens.
var Types = []Type{
	TypeSequence,
	TypeClass,
	TypeComponent,
	TypeDeployment,
	TypeActivity,
	TypeState,
	TypeUsecase,
	TypeObject,
	TypeGeneric,
}

// Valid reports whether t is a known diagram type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
