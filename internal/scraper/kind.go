package scraper

import "fmt"

// RequestKind identifies one narrow-purpose sub-request of an entity load.
type RequestKind int

const (
	KindInfo RequestKind = iota
	KindCast
	KindTrailers
	KindImages
	KindReleases
)

func (k RequestKind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindCast:
		return "cast"
	case KindTrailers:
		return "trailers"
	case KindImages:
		return "images"
	case KindReleases:
		return "releases"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Route declares which fields a provider's sub-request of a given kind is
// authoritative for. Always routes are dispatched on every load regardless
// of the requested fields.
type Route struct {
	Kind   RequestKind
	Fields FieldSet
	Always bool
}

// ValidateRoutes returns ErrOverlappingOwnership when two routes claim the
// same field.
func ValidateRoutes(routes []Route) error {
	var seen FieldSet
	kinds := make(map[RequestKind]bool, len(routes))
	for _, r := range routes {
		if kinds[r.Kind] {
			return fmt.Errorf("%w: kind %s declared twice", ErrOverlappingOwnership, r.Kind)
		}
		kinds[r.Kind] = true
		if shared := seen.Intersect(r.Fields); !shared.Empty() {
			return fmt.Errorf("%w: %s claimed by %s", ErrOverlappingOwnership, shared, r.Kind)
		}
		seen = seen.Union(r.Fields)
	}
	return nil
}

// KindsFor returns the kinds to dispatch for the requested fields, in route
// declaration order.
func KindsFor(routes []Route, requested FieldSet) []RequestKind {
	kinds := make([]RequestKind, 0, len(routes))
	for _, r := range routes {
		if r.Always || !r.Fields.Intersect(requested).Empty() {
			kinds = append(kinds, r.Kind)
		}
	}
	return kinds
}

// OwnedFields returns the fields the route of kind k is authoritative for.
func OwnedFields(routes []Route, k RequestKind) FieldSet {
	for _, r := range routes {
		if r.Kind == k {
			return r.Fields
		}
	}
	return 0
}

// Supported returns the union of all fields the routes can deliver.
func Supported(routes []Route) FieldSet {
	var s FieldSet
	for _, r := range routes {
		s = s.Union(r.Fields)
	}
	return s
}
