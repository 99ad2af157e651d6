// Package util holds small file helpers shared by the command line tools.
package util

import "os"

// CreateFile creates filename exclusively, failing if it already exists.
func CreateFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0640)
}
