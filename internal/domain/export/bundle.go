// Package export defines the interchange bundle produced by export requests.
package export

// Format is a supported interchange format.
type Format string

// Interchange formats. Excel is accepted but answered with a placeholder.
const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ValidFormat reports whether f is a known interchange format.
func ValidFormat(f Format) bool {
	switch f {
	case FormatJSON, FormatCSV, FormatExcel:
		return true
	}
	return false
}

// Record is one exported row: an ordered key sequence plus a value map.
// Keys carry the column order; plain Go maps do not preserve insertion order.
type Record struct {
	Keys   []string
	Values map[string]any
}

// Bundle is the result of an export request. Count always equals len(Data).
type Bundle struct {
	Data   []Record
	Format Format
	Count  int
}

// NewBundle builds a bundle with Count pinned to len(data).
func NewBundle(data []Record, format Format) Bundle {
	return Bundle{Data: data, Format: format, Count: len(data)}
}
