// Package regression detects silent compression-quality regressions between
// codec builds by comparing observed compression ratios against stored
// per-format, per-quality baselines.
//
// Baselines are loaded once from static fixture data and are read-only
// thereafter. A comparison passes when the observed ratio stays within the
// baseline's absolute tolerance; a missing baseline marks that single
// comparison inconclusive without aborting a larger test run.
//
// # Usage
//
//	cmp := regression.Default()
//	result, err := cmp.Compare(0.55, format.PNG, 20)
//	if err != nil {
//	    var missing *regression.MissingBaselineError
//	    if errors.As(err, &missing) {
//	        // inconclusive, skip this comparison
//	    }
//	}
//	if !result.Pass {
//	    // ratio drifted beyond tolerance; result.Delta says how far
//	}
package regression
