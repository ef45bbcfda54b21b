// Package utils provides shared helpers for bounded concurrency, panic
// recovery and vector math.
package utils
