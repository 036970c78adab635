package recordfile

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

var defaultOptions = Options{
	Magic:      uint32(0x50474152),
	FileMode:   0664,
	ReadOnly:   false,
	RecordSize: 64,
	PerPage:    16,
	Origin:     1,
}

// Options represents configuration options for a record file.
type Options struct {
	Magic      uint32
	ReadOnly   bool
	FileMode   os.FileMode
	RecordSize int // bytes per record
	PerPage    int // records served per page
	Origin     int // page number of the first page

	fileFlag int
	mmapFlag int
}

func (opts *Options) init() {
	opts.mmapFlag = mmap.RDWR
	opts.fileFlag = os.O_CREATE | os.O_RDWR
	if opts.ReadOnly {
		opts.fileFlag = os.O_RDONLY
		opts.mmapFlag = mmap.RDONLY
	}
}
