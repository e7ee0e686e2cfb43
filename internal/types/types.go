// README: Common identifier and geographic value objects used across modules.
package types

// ID is a UUID string. Entities are keyed by ID everywhere; the zero value
// means "no entity".
type ID string

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
