// Package style holds the theme contract shared with rendering
// collaborators.
//
// A Theme maps slot names such as "heading.h1", "quote" or
// "card.corner.md" to opaque class strings. The document engine reads and
// writes these mappings but never interprets them. Themes are loaded from
// YAML; nested maps are flattened into dotted slot names:
//
//	name: paper
//	classes:
//	  paragraph: "folio-p"
//	  heading:
//	    h1: "folio-h1 text-3xl"
//	  card:
//	    corner:
//	      lg: "rounded-xl"
package style
