package recordfile

import (
	"encoding/binary"
	"errors"
	"unsafe"
)

const version = 0x1
const headerSz = int(unsafe.Sizeof(header{}))

// header occupies the first bytes of every on-disk record file. Records
// start immediately after it.
type header struct {
	magic   uint32 // identifies the file as a record file
	version uint8  // layout version
	flags   uint8  // reserved
	recSize uint16 // bytes per record
}

func (h header) MarshalBinary() (data []byte, err error) {
	buf := make([]byte, headerSz)
	binary.LittleEndian.PutUint32(buf[0:4], h.magic)
	buf[4] = h.version
	buf[5] = h.flags
	binary.LittleEndian.PutUint16(buf[6:8], h.recSize)
	return buf, nil
}

func (h *header) UnmarshalBinary(data []byte) error {
	if h == nil {
		return errors.New("cannot unmarshal into nil header")
	} else if len(data) < headerSz {
		return errors.New("not enough data for header")
	}

	h.magic = binary.LittleEndian.Uint32(data[0:4])
	h.version = data[4]
	h.flags = data[5]
	h.recSize = binary.LittleEndian.Uint16(data[6:8])
	return nil
}
