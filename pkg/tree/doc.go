// Package tree defines the cause tree consumed by the fishbone layout.
//
// A [Tree] is a named node with ordered children. The root is the effect
// being analysed; its children are the major causes drawn as ribs, and each
// deeper level is drawn as sub-ribs off its parent.
//
// # Formats
//
// Trees are read from JSON or YAML documents of the same shape:
//
//	{
//	  "name": "Late delivery",
//	  "children": [
//	    {"name": "Machine", "children": [{"name": "Old press"}]},
//	    {"name": "Method"}
//	  ]
//	}
//
// Decoding is lenient about children: an absent, null or non-sequence
// "children" value decodes as a leaf. Names are not validated here; the
// graph builder rejects unnamed nodes with the path of the offending node.
//
// Use [ReadFile] to pick the decoder from the file extension, or [Read] with
// an explicit [Format].
package tree
