package driver

import "strconv"

// Status is a driver result code. It mirrors the FatFs FRESULT taxonomy.
// The zero value is not an error and is never returned as one.
type Status uint8

const (
	// DiskErr is a hard error in the low level disk I/O layer.
	DiskErr Status = iota + 1
	// IntErr is an internal consistency failure.
	IntErr
	// NotReady means the physical drive cannot work.
	NotReady
	// NoFile means the file could not be found.
	NoFile
	// NoPath means the path could not be found.
	NoPath
	// InvalidName means the path name format is invalid.
	InvalidName
	// Denied means access was denied or the directory is full.
	Denied
	// Exist means the object already exists.
	Exist
	// InvalidObject means the file or directory object is invalid.
	InvalidObject
	// WriteProtected means the physical drive is write protected.
	WriteProtected
	// InvalidDrive means the logical drive number is invalid.
	InvalidDrive
	// NotEnabled means the volume has no work area.
	NotEnabled
	// NoFilesystem means there is no valid FAT volume.
	NoFilesystem
	// Timeout means access to the volume could not be granted in time.
	Timeout
	// Locked means the operation is rejected by the file sharing policy.
	Locked
	// NotEnoughCore means a working buffer could not be allocated.
	NotEnoughCore
	// TooManyOpenFiles means the number of open files exceeds the limit.
	TooManyOpenFiles
	// InvalidParameter means a given parameter is invalid.
	InvalidParameter
)

var statusText = map[Status]string{
	DiskErr:          "disk error",
	IntErr:           "internal error",
	NotReady:         "drive not ready",
	NoFile:           "no such file",
	NoPath:           "no such path",
	InvalidName:      "invalid name",
	Denied:           "access denied",
	Exist:            "file exists",
	InvalidObject:    "invalid object",
	WriteProtected:   "write protected",
	InvalidDrive:     "invalid drive",
	NotEnabled:       "volume not enabled",
	NoFilesystem:     "no filesystem",
	Timeout:          "timeout",
	Locked:           "locked",
	NotEnoughCore:    "not enough memory",
	TooManyOpenFiles: "too many open files",
	InvalidParameter: "invalid parameter",
}

func (s Status) Error() string {
	if txt, ok := statusText[s]; ok {
		return txt
	}
	return "driver status " + strconv.Itoa(int(s))
}
