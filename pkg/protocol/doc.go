// Package protocol implements the line-oriented text protocol spoken with
// the controlling process.
//
// Every line is a verb followed by zero or more percent-encoded arguments
// separated by single spaces. Encoding protects whitespace, control bytes,
// non-ASCII bytes and the percent sign itself, so any argument survives a
// round trip through Encode and Decode.
package protocol
