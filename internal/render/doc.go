// Package render rasterizes pages and annotation overlays with gogpu/gg.
//
// Page content rasterization is delegated to a PageRenderer. The default
// SheetRenderer paints the page sheet only: a white rectangle the size of
// the media box at the requested scale. Overlay draws annotations on top of
// any page image and encodes the result as PNG.
package render
