package ragged

// An Array is a nested, variable-length array value: either a concrete value
// carrying real buffers, or a representative (typetracer) value carrying only
// a Form. Every structural operation is total over representatives: it never
// fails because backing buffers are absent, and it produces a new
// representative whose Form equals what the same operation on concrete data
// would produce. Arrays are immutable after construction.
type Array interface {
	Len() int                           // Len retrieves the number of rows in this Array. Representatives report zero rows.
	Form() Form                         // Form retrieves the structural type of this Array
	NDim() int                          // NDim retrieves the nesting depth of this Array down the rectangular axis
	IsTypetracer() bool                 // IsTypetracer returns true iff this Array is a representative value with no buffers
	Typetracer() Array                  // Typetracer returns a representative stand-in for this Array with an identical Form
	Slice(start, stop int) (Array, error) // Slice returns the row range [start, stop) of this Array
	Field(name string) (Array, error)   // Field retrieves the named record field as an Array of the same length
	Fields() []string                   // Fields lists the record field names of this Array, empty for non-records
	String() string                     // String produces a string representation of this Array for logging
}
