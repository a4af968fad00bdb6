// Package dxf renders a canonical layout as an ASCII DXF drawing.
//
// # Output
//
// The drawing uses millimeters as its base unit and declares two layers:
//
//   - ROOMS: one closed four-vertex POLYLINE per room, plus a TEXT label
//     with the room name placed 50mm right of and 50mm below the room's
//     top-left corner
//   - SPRINKLERS: one CIRCLE of radius 50mm per sprinkler
//
// The file is an AutoCAD R12 (AC1009) drawing: a HEADER with the drawing
// extents, LTYPE, LAYER and STYLE tables defining every name the entities
// refer to, an empty BLOCKS section and the ENTITIES section. R12 needs no
// handles or object dictionaries, so the drawing is complete as written
// and opens in AutoCAD as well as in lightweight DXF readers.
//
// Entities are emitted in layout order, rooms first. Polylines use the
// R12 form: POLYLINE, one VERTEX per corner, SEQEND.
//
// # Labels
//
// A label that cannot be placed is skipped without affecting the rest of
// the drawing: rooms whose name is empty after removing control
// characters, and rooms too small to hold the label anchor inside their
// outline. [Stats] reports how many labels were skipped.
//
//	data, stats := dxf.Render(l)
//	os.WriteFile("design.dxf", data, 0o644)
package dxf
