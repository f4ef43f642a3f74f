// Package recalc provides the reactive core: variables whose values are
// derived from expression trees and recomputed automatically when anything
// they read changes.
//
// # Core Types
//
// Variable is a reactive cell. Its content is an Expression: a Literal, a
// function application (Apply) or a Reference to another cell or context:
//
//	e := recalc.New()
//	a := e.NewVariable("a")
//	b := e.NewVariable("b")
//
//	a.SetContent(ctx, recalc.Lit(value.Int(2)))
//	b.SetContent(ctx, recalc.Call(function.Add, recalc.Ref(a), recalc.Lit(value.Int(3))))
//	b.Value() // 5
//
//	a.SetContent(ctx, recalc.Lit(value.Int(10)))
//	b.Value() // 13
//
// Reference walks a path of segments through value.Context implementations
// (vectors, scopes, host objects) and ends at a Variable or a plain value.
// When it ends at a Variable it registers itself as a listener, so changes
// flow back to the Variable hosting the reference.
//
// # Propagation
//
// Update re-evaluates a Variable's content. An unchanged value stops the wave.
// A changed value notifies subscribers and then every listening Reference,
// one goroutine per listener, and waits for the whole wave before
// returning. When SetContent or Update returns, everything downstream is
// consistent with the current inputs.
//
// # Cycles
//
// SetContent runs a breadth-first search over forward references before
// mutating anything. A mutation that would let a Variable read itself is
// rejected with a *CycleError and leaves the graph untouched.
//
// # Thread Safety
//
// Every Variable guards its content and its value with two independent
// reader-writer locks. There is no graph-wide lock: different Variables can be
// mutated and recomputed from different goroutines at the same time.
package recalc
