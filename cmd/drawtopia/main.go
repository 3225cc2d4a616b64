// Package main provides the entry point for the drawtopia CLI.
//
// drawtopia marks up PDF documents: it draws strokes, shapes and
// measurements on pages and exports them as PNG images or as an
// annotated PDF.
//
// Usage:
//
//	drawtopia info plan.pdf
//	drawtopia annotate -s markup.yaml plan.pdf
//	drawtopia measure length 0,0 30,40
//
// See --help for all available options.
package main

func main() {
	Execute()
}
