// Package testutil provides an observer that records timed notifications and
// a handful of small operators for exercising the harness in tests.
package testutil
