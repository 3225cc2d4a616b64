// Package script parses markup scripts: YAML files listing the actions a
// user would take on a loaded document.
//
//	name: mark up floor plan
//	steps:
//	  - tool: area
//	  - color: blue
//	  - draw: [[40, 40], [300, 40], [300, 220], [40, 220]]
//	  - note: {at: [60, 260], text: "verify with site survey"}
//	  - zoom: in
//	  - page: next
//	  - save
//	  - export_png: "{name}-page-{page}.png"
//	  - export_pdf: ""
//
// Each step holds exactly one action. Coordinates are canvas pixels at the
// zoom in effect when the step runs. Actions without an argument (clear,
// save) may be written as a bare word or with a true value.
package script
