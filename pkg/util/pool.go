package util

import "runtime"

// GetOptimalPoolSize returns min(max(2×NumCPU, 4), 32).
//
// The same value sizes the tree-sitter parser pools and the workspace worker
// pool, so a worker never blocks waiting for a parser.
func GetOptimalPoolSize() int {
	size := runtime.NumCPU() * 2
	if size < 4 {
		size = 4
	}
	if size > 32 {
		size = 32
	}
	return size
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
