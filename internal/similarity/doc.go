// Package similarity provides the bag-of-words text model used to compare
// transcriptions: tokenization, term-frequency vectors, and cosine
// similarity.
//
// Tokens are lowercase ASCII alphanumeric runs. Every other character,
// including non-ASCII letters, separates tokens. Text with no tokens yields an
// empty vector, and an empty vector is never similar to anything, including
// another empty vector.
package similarity
