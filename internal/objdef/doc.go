// Package objdef holds the object definition data model: the ordered
// directive record parsed from one typed configuration block, the closed
// registry of known object types, and the canonical serialization used
// when a definition is rewritten.
//
// Definitions implement expr.Env and expr.MutableEnv, so filter and update
// expressions evaluate directly against them.
package objdef
