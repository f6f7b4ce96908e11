// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler and dataset
// fixtures (a small two-entity table written as xlsx or csv) for tests.
package shared
