//go:build linux

package fbdev

import (
	"syscall"
	"unsafe"
)

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlPtr[T any](fd int, req uint, arg *T) error {
	return ioctl(fd, req, unsafe.Pointer(arg))
}
