// Package export serializes a tessellated Store to the output formats a
// viewer or downstream tool consumes: Wavefront OBJ, glTF 2.0, a full JSON
// dump, and a plan-view SVG for quick visual debugging.
package export
