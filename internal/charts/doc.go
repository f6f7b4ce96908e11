// Package charts renders report panels as PNG images with gonum/plot.
//
// A Renderer turns the distribution, entity and trend panels into five chart
// kinds: histogram, density, entity-line, entity-bar and trend. Missing values
// are left out of the plot rather than drawn as zero.
//
// The bundled plot fonts cover Latin text only, so titles use entity codes
// and English captions.
package charts
