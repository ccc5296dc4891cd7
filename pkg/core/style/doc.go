// Package style holds the depth-indexed style tables of a fishbone diagram.
//
// # Overview
//
// A diagram is styled by two ordered tables: line styles, looked up by link
// depth, and node styles, looked up by node depth. Trees are usually deeper
// than the tables are long, so every lookup goes through [ClampIndex]:
//
//   - a negative index (including the [NoIndex] sentinel) selects the first entry
//   - an index past the end selects the last entry
//
// Lookups never fail once a table exists. The only error is constructing a
// table without entries, which is reported as a CONFIGURATION error by
// [NewTable], [Select] and [Config.Validate].
//
// # Configuration Files
//
// [LoadFile] and [Decode] read TOML documents:
//
//	[[lines]]
//	color = "#00b3f6"
//	stroke_width_px = 2
//
//	[[nodes]]
//	color = "white"
//	font_size_em = 2
//	background_color = "#00b3f6"
//
// Omitted tables fall back to [Defaults].
package style
