// Package inspect serves a live view of a recalc Scope over HTTP.
//
// The server lists variables with their current values, accepts new
// content as exprjson documents, exposes the function catalog and the
// Prometheus registry, and streams value changes to WebSocket clients:
//
//	srv := inspect.New(scope, inspect.Config{Gatherer: reg})
//	go srv.Run(ctx, ":8090")
//
// Change messages have the form
//
//	{"type":"change","name":"sheet.A1","old":{...},"new":{...}}
//
// where old and new are exprjson value encodings.
package inspect
