//go:build !profile

package profiler

// No-op versions used when the "profile" build tag is not set.

func Init(capacity int) {}

func Start(name string) func() { return noop }

func Dump(path string) error { return nil }

func noop() {}
