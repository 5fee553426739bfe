//go:build linux

package ipc

import "golang.org/x/sys/unix"

// currentThreadID returns the kernel thread id of the calling thread.
func currentThreadID() int {
	return unix.Gettid()
}

// setThreadAffinity pins the given kernel thread to a single CPU.
func setThreadAffinity(tid, cpu int) error {
	var mask unix.CPUSet
	mask.Set(cpu)
	if err := unix.SchedSetaffinity(tid, &mask); err != nil {
		return WrapError("assign", err)
	}
	return nil
}
