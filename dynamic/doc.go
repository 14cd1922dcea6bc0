// Package dynamic provides the live parameter cells that let a built
// pipeline be adjusted at render time without rebuilding it.
//
// A [Property] is the cell itself: a typed float64 that render goroutines
// read and an application goroutine writes. A [Handle] is what an operation
// holds; it points at one Property and can be repointed atomically, which is
// how the operations of one pipeline come to share a single cell per
// [Type]. A [Registry] performs that unification while a pipeline is built.
//
// Reads and writes of a cell are atomic for the whole value. No ordering is
// guaranteed between concurrent writers, and a block being rendered while a
// value changes may observe either value.
package dynamic
