package output

import "io"

// Print writes tableData for table formats and raw for structured ones.
func Print(w io.Writer, format Format, tableData Data, raw any) error {
	switch format {
	case FormatTable, FormatWide, "":
		return render(w, tableData)
	default:
		return NewFormatter(format).Format(w, raw)
	}
}

// IsWide reports whether format asks for every column.
func IsWide(format Format) bool {
	return format == FormatWide
}
