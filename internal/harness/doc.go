// Package harness is the marble test surface: a TestScheduler facade over a
// virtual clock, timed sources and an expectation ledger, plus a YAML
// scenario runner built on top of it.
//
// # Writing a test
//
//	harness.Run(t, func(s *harness.TestScheduler) {
//		src, _ := s.Cold("--a--b--|", nil, nil)
//		s.ExpectObservable(src).ToBe("--a--b--|", nil, nil)
//		s.ExpectSubscriptions(src).ToBe("^-------!")
//	})
//
// Nothing runs until Flush, which Run calls after the body returns. Flush
// starts hot sources, drains the clock and then resolves every expectation
// in registration order. A failed comparison is a *MismatchError; an
// expectation that never received ToBe is an *UnresolvedError. Both are
// returned together through errors.Join.
//
// # Comparison
//
// Actual and expected values pass through ir.Normalize before the
// comparator sees them, so a Go error delivered by a source matches an
// ir.ErrorInfo carrying its type name and message. The default comparator is
// testify's ObjectsAreEqual.
//
// # Scenarios
//
// Scenario files describe sources and expectations in YAML. ValidateScenarioFile
// checks them against an embedded CUE schema; Runner executes them; the
// golden helpers compare the canonical trace with testdata/golden.
package harness
