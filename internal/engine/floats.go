package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"math"
	"strconv"
)

// byteStream yields an unbounded HMAC-SHA256 byte stream keyed by the seed.
// Each 32-byte round hashes "<label>:<round>".
type byteStream struct {
	key   []byte
	label string
	round uint64
	pos   int
	buf   [32]byte
}

func newByteStream(seed int64, label string) *byteStream {
	bs := &byteStream{
		key:   []byte(strconv.FormatInt(seed, 10)),
		label: label,
	}
	bs.fill()
	return bs
}

func (bs *byteStream) next() byte {
	if bs.pos >= len(bs.buf) {
		bs.round++
		bs.pos = 0
		bs.fill()
	}
	b := bs.buf[bs.pos]
	bs.pos++
	return b
}

// nextFloat consumes four bytes and returns a float in [0, 1).
func (bs *byteStream) nextFloat() float64 {
	return bytesToFloat([4]byte{bs.next(), bs.next(), bs.next(), bs.next()})
}

func (bs *byteStream) fill() {
	h := hmac.New(sha256.New, bs.key)
	h.Write([]byte(bs.label))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.FormatUint(bs.round, 10)))
	copy(bs.buf[:], h.Sum(nil))
}

func bytesToFloat(b [4]byte) float64 {
	result := 0.0
	for i, v := range b {
		result += float64(v) / math.Pow(256, float64(i+1))
	}
	return result
}
