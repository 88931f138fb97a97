//go:build unix

package codec

import (
	"golang.org/x/sys/unix"
)

type fder interface {
	Fd() uintptr
}

// mapFile maps an open file read-only. ok is false when the file has no
// descriptor (e.g. in-memory filesystems) or mapping fails.
func mapFile(f any, size int64) (data []byte, unmap func(), ok bool) {
	fd, isFile := f.(fder)
	if !isFile || size <= 0 {
		return nil, nil, false
	}
	data, err := unix.Mmap(int(fd.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, false
	}
	return data, func() { _ = unix.Munmap(data) }, true
}
