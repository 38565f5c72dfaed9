// Package ingestion stores raw text as documents.
//
// The Pipeline type validates incoming text and writes it to the document
// repository. Documents are addressed by a hash of their text, so ingesting
// the same text twice stores it once. Vectors are filled in later by an
// index build.
package ingestion
