// Package grid is the resource-agnostic table browser behind every console
// screen.
//
// A Grid keeps search, sort, filter, selection and paging state for the rows
// its host supplies, and turns user gestures into host callbacks. Destructive
// intents go through a confirm.Opener. The pure helpers (Window, EncodeCSV,
// ExportFilename) are usable without a Grid, and the CLI uses them directly.
package grid
