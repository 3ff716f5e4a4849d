// Package codec converts editor states to and from the versioned JSON
// document format.
//
// A serialized editor state is an object with a single "root" member.
// Every node is an object carrying "type" and "version", the fields its
// class exports and, for elements, a "children" array:
//
//	{"root": {"type": "root", "version": 1, "children": [
//	    {"type": "paragraph", "version": 1, "children": [
//	        {"type": "text", "version": 1, "text": "hello", "format": 1}
//	    ]}
//	]}}
//
// Composite nodes embed the serialized states of their nested editors.
//
// Import never fails on bad content. Unparsable input or a missing root
// yields an empty document, and nodes of unknown types are skipped. Both
// are recorded in the returned Report.
package codec
