// Package board is the headless corkboard: it maps pointer events to board and item gestures,
// keeps the selection and the focus mode, and renders the pinned items.
package board
