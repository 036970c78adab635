// Package recordfile implements a fixed-size-record file that serves its
// records one page at a time, suitable as a fetch source for paged arrays.
// On-disk files are memory mapped; the name ':memory:' creates an
// ephemeral in-memory file.
package recordfile

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"

	"github.com/paged-go/paged"
	"github.com/paged-go/paged/source"
)

// InMemoryFileName can be passed to Open to create an ephemeral in-memory
// record file.
const InMemoryFileName = ":memory:"

var _ source.Fetcher[[]byte] = (*File)(nil)

// Open opens the named record file, creating and initializing it if it
// does not exist and the options are not read-only. If 'opts' is nil,
// defaultOptions are used.
func Open(filePath string, opts *Options) (*File, error) {
	if opts == nil {
		opts = &defaultOptions
	}
	if opts.RecordSize < 1 {
		return nil, errors.Errorf("invalid record size %d, must be at least 1", opts.RecordSize)
	} else if opts.PerPage < 1 {
		return nil, errors.Errorf("invalid records-per-page %d, must be at least 1", opts.PerPage)
	}
	opts.init()

	f := &File{
		recSize:  opts.RecordSize,
		perPage:  opts.PerPage,
		origin:   opts.Origin,
		readOnly: opts.ReadOnly,
		magic:    opts.Magic,
		mmapFlag: opts.mmapFlag,
	}

	if filePath == InMemoryFileName {
		return f, nil
	}

	fh, err := os.OpenFile(filePath, opts.fileFlag, opts.FileMode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open record file")
	}
	f.file = fh

	if err := f.open(); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.mmap(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

// File is a flat file of fixed-size records with a small binary header.
// Records are addressed by position and served in fixed-size pages. File
// is NOT safe for concurrent use.
type File struct {
	// file state
	file *os.File  // nil for in-memory files
	data mmap.MMap // mapped region for on-disk files
	mem  []byte    // backing buffer for in-memory files
	size int64

	// configuration
	recSize  int
	perPage  int
	origin   int
	readOnly bool
	magic    uint32
	mmapFlag int
}

// Append writes one record at the end of the file. The record must be
// exactly RecordSize bytes.
func (f *File) Append(record []byte) error {
	if len(record) != f.recSize {
		return errors.Errorf("record must be %d bytes, got %d", f.recSize, len(record))
	} else if f.readOnly {
		return errors.New("record file is read-only")
	}

	if f.file == nil {
		f.mem = append(f.mem, record...)
		return nil
	}

	_ = f.unmmap()
	if _, err := f.file.WriteAt(record, f.size); err != nil {
		return errors.Wrap(err, "failed to append record")
	}
	f.size += int64(len(record))

	return f.mmap()
}

// Record returns a copy of the record at the given position.
func (f *File) Record(i int) ([]byte, error) {
	if i < 0 || i >= f.Count() {
		return nil, errors.Errorf("record %d out of range [0, %d)", i, f.Count())
	}

	buf := make([]byte, f.recSize)
	if err := f.readAt(buf, f.offset(i)); err != nil {
		return nil, err
	}
	return buf, nil
}

// FetchPage returns the records of the given page, so that a File can act
// as the fetch source behind a paged array sharing its page numbering.
// The terminal page may hold fewer than PerPage records.
func (f *File) FetchPage(page int) ([][]byte, error) {
	ordinal := page - f.origin
	if ordinal < 0 || ordinal >= f.Pages() {
		return nil, errors.Errorf("page %d out of range [%d, %d)", page, f.origin, f.origin+f.Pages())
	}

	start := ordinal * f.perPage
	end := start + f.perPage
	if end > f.Count() {
		end = f.Count()
	}

	records := make([][]byte, 0, end-start)
	for i := start; i < end; i++ {
		rec, err := f.Record(i)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Array creates a paged array sized and numbered to match the file, using
// 'opts' for the placeholder and observer settings. The numbering origin
// is always the file's own.
func (f *File) Array(opts *paged.Options[[]byte]) (*paged.Array[[]byte], error) {
	o := paged.Options[[]byte]{Origin: f.origin}
	if opts != nil {
		o = *opts
		o.Origin = f.origin
	}
	return paged.New[[]byte](f.Count(), f.perPage, &o)
}

// Count returns the number of records currently in the file.
func (f *File) Count() int {
	if f.file == nil {
		return len(f.mem) / f.recSize
	}
	return int(f.size-int64(headerSz)) / f.recSize
}

// Pages returns the number of pages needed to serve all records.
func (f *File) Pages() int {
	return (f.Count() + f.perPage - 1) / f.perPage
}

// RecordSize returns the size of one record in bytes.
func (f *File) RecordSize() int { return f.recSize }

// PerPage returns the number of records served per page.
func (f *File) PerPage() int { return f.perPage }

// Origin returns the page number of the first page.
func (f *File) Origin() int { return f.origin }

// Close flushes the mapped region and releases the file.
func (f *File) Close() error {
	if f.file == nil {
		f.mem = nil
		return nil
	}

	_ = f.unmmap()
	err := f.file.Close()
	f.file = nil
	return err
}

func (f *File) open() error {
	fi, err := f.file.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat record file")
	}
	f.size = fi.Size()

	if f.size == 0 {
		if f.readOnly {
			return errors.New("cannot initialize empty file in read-only mode")
		}
		return f.writeHeader()
	}
	return f.readHeader()
}

func (f *File) writeHeader() error {
	d, _ := header{
		magic:   f.magic,
		version: version,
		recSize: uint16(f.recSize),
	}.MarshalBinary()

	if _, err := f.file.WriteAt(d, 0); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	f.size = int64(len(d))
	return nil
}

func (f *File) readHeader() error {
	buf := make([]byte, headerSz)
	if _, err := f.file.ReadAt(buf, 0); err != nil {
		return errors.Wrap(err, "failed to read header")
	}

	h := header{}
	if err := h.UnmarshalBinary(buf); err != nil {
		return err
	}

	if h.magic != f.magic {
		return errors.Errorf("invalid magic in header: %#x", h.magic)
	} else if h.version != version {
		return errors.Errorf("invalid version in header: %d", h.version)
	} else if h.recSize == 0 {
		return errors.New("record size not set in header")
	}

	// the file's own record size is authoritative
	f.recSize = int(h.recSize)
	return nil
}

func (f *File) readAt(buf []byte, offset int64) error {
	if f.file == nil {
		copy(buf, f.mem[offset:])
		return nil
	}

	if f.data != nil {
		copy(buf, f.data[offset:])
		return nil
	}

	_, err := f.file.ReadAt(buf, offset)
	return errors.Wrap(err, "failed to read record")
}

func (f *File) offset(i int) int64 {
	if f.file == nil {
		return int64(i * f.recSize)
	}
	return int64(headerSz + i*f.recSize)
}

func (f *File) mmap() error {
	if f.file == nil || f.size == 0 {
		return nil
	}

	d, err := mmap.Map(f.file, f.mmapFlag, 0)
	if err != nil {
		return errors.Wrap(err, "failed to mmap record file")
	}
	f.data = d
	return nil
}

func (f *File) unmmap() error {
	if f.data == nil {
		return nil
	}
	err := f.data.Unmap()
	f.data = nil
	return err
}
