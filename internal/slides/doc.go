// Package slides produces the per-slide inputs of a run: page images
// rasterized from the PDF deck and, optionally, the speaker notes of the
// matching .pptx deck.
package slides
