package recordfile

import (
	"bytes"
	"testing"
)

var sampleHeaderBytes = []byte{
	0x52, 0x41, 0x47, 0x50, // magic (little endian)
	0x1,        // version
	0x0,        // flags
	0x40, 0x00, // record-size
}

var sampleHeader = header{
	magic:   0x50474152,
	version: version,
	flags:   0,
	recSize: 64,
}

func Test_header_MarshalBinary(t *testing.T) {
	got, err := sampleHeader.MarshalBinary()
	if err != nil {
		t.Errorf("MarshalBinary() unexpected error: %v", err)
	}

	if !bytes.Equal(got, sampleHeaderBytes) {
		t.Errorf("MarshalBinary() want=%#v, got=%#v", sampleHeaderBytes, got)
	}
}

func Test_header_UnmarshalBinary(t *testing.T) {
	h := header{}
	if err := h.UnmarshalBinary(sampleHeaderBytes); err != nil {
		t.Errorf("UnmarshalBinary() unexpected error: %v", err)
	}
	if h != sampleHeader {
		t.Errorf("UnmarshalBinary() want=%#v, got=%#v", sampleHeader, h)
	}

	if err := h.UnmarshalBinary(sampleHeaderBytes[:4]); err == nil {
		t.Errorf("UnmarshalBinary() expecting error for short data, got nil")
	}
}
