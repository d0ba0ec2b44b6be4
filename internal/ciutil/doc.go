// Package ciutil detects CI environments and resolves the database URL used by
// integration tests. It has no dependency on the rest of the module so test
// helpers anywhere can use it.
package ciutil
