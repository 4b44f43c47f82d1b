//go:build !unix && !windows

package platform

import "runtime"

func sysname() string { return runtime.GOOS }

func machine() string { return runtime.GOARCH }
