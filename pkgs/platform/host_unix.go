//go:build unix

package platform

import "golang.org/x/sys/unix"

func uname() (unix.Utsname, bool) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return u, false
	}
	return u, true
}

func sysname() string {
	u, ok := uname()
	if !ok {
		return ""
	}
	return unix.ByteSliceToString(u.Sysname[:])
}

func machine() string {
	u, ok := uname()
	if !ok {
		return ""
	}
	return unix.ByteSliceToString(u.Machine[:])
}
