// Package jpegquality estimates the encoder quality setting of a JPEG image
// from its quantization tables.
package jpegquality

import (
	"bytes"
	"errors"
	"io"
)

var (
	ErrInvalidJPEG  = errors.New("invalid JPEG header")
	ErrWrongTable   = errors.New("wrong size for quantization table")
	ErrShortSegment = errors.New("short segment length")
	ErrShortDQT     = errors.New("section DQT is too short")
)

const (
	markerSOI = 0xffd8
	markerEOI = 0xffd9
	markerSOS = 0xffda
	markerDQT = 0xffdb
)

// Standard quantization tables from ITU-T T.81 Annex K, in the zig-zag
// order DQT segments use on the wire. Encoders following libjpeg scale
// these by the quality setting, so inverting the observed per-entry scale
// recovers that setting.
var stdLuminance = [64]int{
	16, 11, 12, 14, 12, 10, 16, 14,
	13, 14, 18, 17, 16, 19, 24, 40,
	26, 24, 22, 22, 24, 49, 35, 37,
	29, 40, 58, 51, 61, 60, 57, 51,
	56, 55, 64, 72, 92, 78, 64, 68,
	87, 69, 55, 56, 80, 109, 81, 87,
	95, 98, 103, 104, 103, 62, 77, 113,
	121, 112, 100, 120, 92, 101, 103, 99,
}

var stdChrominance = [64]int{
	17, 18, 18, 24, 21, 24, 47, 26,
	26, 47, 99, 66, 56, 66, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
	99, 99, 99, 99, 99, 99, 99, 99,
}

type jpegReader struct {
	rs      io.ReadSeeker
	quality int
}

// New estimates the quality the JPEG on rs was encoded with. The reader is
// rewound first, so repeated calls over the same reader agree.
func New(rs io.ReadSeeker) (*jpegReader, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	jr := &jpegReader{rs: rs}
	if m := jr.readMarker(); m != markerSOI {
		return nil, ErrInvalidJPEG
	}
	q, err := jr.readQuality()
	if err != nil {
		return nil, err
	}
	jr.quality = q
	return jr, nil
}

// NewWithBytes is New over an in-memory image.
func NewWithBytes(data []byte) (*jpegReader, error) {
	return New(bytes.NewReader(data))
}

// Quality returns the estimated encoder quality setting, 1 to 100.
func (jr *jpegReader) Quality() int {
	return jr.quality
}

// readMarker returns the next segment marker, resynchronizing on stray
// bytes, or 0 when the stream ends first.
func (jr *jpegReader) readMarker() int {
	var mr [2]byte
	for {
		if _, err := io.ReadFull(jr.rs, mr[:]); err != nil {
			return 0
		}
		if mr[0] == 0xff && mr[1] != 0xff && mr[1] != 0x00 {
			return int(mr[0])<<8 | int(mr[1])
		}
		if _, err := jr.rs.Seek(-1, io.SeekCurrent); err != nil {
			return 0
		}
	}
}

// readQuality walks the segments up to the scan data looking for DQT
// sections and estimates quality from the tables found.
func (jr *jpegReader) readQuality() (int, error) {
	for {
		mark := jr.readMarker()
		if mark == 0 || mark == markerEOI || mark == markerSOS {
			return 0, ErrInvalidJPEG
		}
		length, err := jr.readLength()
		if err != nil {
			return 0, err
		}
		if mark != markerDQT {
			if _, err := jr.rs.Seek(int64(length), io.SeekCurrent); err != nil {
				return 0, err
			}
			continue
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(jr.rs, data); err != nil {
			return 0, ErrShortDQT
		}
		return parseDQT(data)
	}
}

func (jr *jpegReader) readLength() (int, error) {
	var buf [2]byte
	if _, err := io.ReadFull(jr.rs, buf[:]); err != nil {
		return 0, ErrShortSegment
	}
	n := int(buf[0])<<8 | int(buf[1])
	if n < 2 {
		return 0, ErrShortSegment
	}
	return n - 2, nil
}

// parseDQT reads every table in one DQT segment and averages the scale each
// entry applies to its standard table. Quality follows the libjpeg mapping:
// scale = 5000/q below 50, 200-2q above.
func parseDQT(data []byte) (int, error) {
	var (
		sum float64
		n   int
	)
	for len(data) > 0 {
		pqtq := data[0]
		precision := pqtq >> 4 // 0: 8-bit entries, 1: 16-bit
		id := int(pqtq & 0x0f)
		if precision > 1 || id > 3 {
			return 0, ErrWrongTable
		}
		width := 1 + int(precision)
		need := 1 + 64*width
		if len(data) < need {
			return 0, ErrShortDQT
		}
		std := &stdChrominance
		if id == 0 {
			std = &stdLuminance
		}
		for i := range 64 {
			v := int(data[1+i*width])
			if precision == 1 {
				v = v<<8 | int(data[2+i*width])
			}
			if v < 1 {
				v = 1
			}
			sum += (100*float64(v) - 50) / float64(std[i])
			n++
		}
		data = data[need:]
	}
	if n == 0 {
		return 0, ErrShortDQT
	}
	scale := sum / float64(n)
	var q float64
	if scale <= 100 {
		q = (200 - scale) / 2
	} else {
		q = 5000 / scale
	}
	switch {
	case q < 1:
		return 1, nil
	case q > 100:
		return 100, nil
	}
	return int(q + 0.5), nil
}
