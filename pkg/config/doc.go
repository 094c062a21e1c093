// Package config loads configuration documents.
//
// A [Loader] decodes a document twice: first into an untyped value that is
// checked against the kind's JSON schema, so errors point at the offending
// source lines, then into the typed kind, which fills its own defaults.
// [LoadGradebook] runs the whole pipeline for a Gradebook, including the
// semantic checks the schema cannot express.
package config
