// Package model defines the core data structures shared across drawtopia.
//
// This package contains the following main types:
//   - Tool: the active drawing or measurement tool and its interaction mode
//   - Color, Brush, Unit: stroke and measurement settings
//   - Annotation and Measurement: user marks on a page
//   - MarkupReport: the outcome of a markup run
//
// Models live in their own package so that session, pdfdoc, render and
// report can share them without import cycles. All of them serialise to
// JSON for reports and the export journal.
package model
