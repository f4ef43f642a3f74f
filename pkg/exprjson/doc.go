// Package exprjson converts between JSON documents and recalc expression
// trees, and renders values as JSON.
//
// An expression document is one JSON object with exactly one form:
//
//	{"number": "2.5"}
//	{"bool": true}
//	{"text": "hello"}
//	{"null": true}
//	{"ref": ["totals", "sum"]}
//	{"call": "add", "args": [{"ref": ["A1"]}, {"number": "3"}]}
//
// A "ref" path starts at a Scope: leading segments naming nested scopes are
// walked, the next segment names a Variable (created when absent) and the
// remaining segments are followed through that Variable's value.
//
// Values encode as {"kind": "number", "value": "2"}. Vectors carry a list
// of encoded elements and errors an object with the error kind and message.
package exprjson
