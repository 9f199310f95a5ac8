// Package perfmetrics is an in-process call-tree profiler.
//
// Code marks the entry and exit of named regions; every goroutine gets its
// own call tree whose nodes accumulate wall and CPU time statistics. Once the
// session is stopped the trees are rolled up per category, per
// instrumentation point and as a tree, and written out as text tables, an
// XML tree, a summary, a speedscope profile and a compressed JSON report.
//
//	perfmetrics.Start()
//	func load() {
//		defer perfmetrics.Func("load", "io")()
//		...
//	}
//	perfmetrics.Stop()
//	perfmetrics.Report(ctx)
//
// Regions must nest on each goroutine. Exits that do not match the innermost
// open region are rejected and leave the tree untouched.
package perfmetrics
