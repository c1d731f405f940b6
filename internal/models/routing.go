// internal/models/routing.go
package models

// ComplexityClass is a coarse triage of a query's structural difficulty.
type ComplexityClass string

const (
	ComplexitySimple  ComplexityClass = "simple"
	ComplexityMedium  ComplexityClass = "medium"
	ComplexityComplex ComplexityClass = "complex"
)

// RoutePath names a generation path chosen by the router.
type RoutePath string

const (
	PathRuleBased  RoutePath = "rule_based"
	PathGenerative RoutePath = "generative"
	PathFallback   RoutePath = "fallback"
)

// RouteDecision records why a request went down a particular path.
type RouteDecision struct {
	ChosenPath RoutePath       `json:"chosenPath"`
	Reason     string          `json:"reason"`
	Complexity ComplexityClass `json:"complexity"`
}
