// Package stream reads object definitions out of configuration text and,
// in update mode, rewrites the source file with surgical edits: unrelated
// text is copied byte for byte while selected blocks are replaced or
// dropped. Edits land in a temporary side file first; a separate promotion
// step installs it over the original, optionally via a transaction file
// that a later Commit pass promotes.
package stream
