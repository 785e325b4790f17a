package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"

	"github.com/veritrace/supplyview/internal/domain"
)

// DiscriminatorLength is the fixed-size schema tag at the front of every
// program account.
const DiscriminatorLength = 8

// Discriminator is the account schema tag: the first 8 bytes of
// SHA-256("account:<Name>"). The program owns this convention; decode must
// agree with it byte for byte.
type Discriminator [DiscriminatorLength]byte

// AccountDiscriminator computes the schema tag for an account type name.
func AccountDiscriminator(name string) Discriminator {
	var d Discriminator
	sum := sha256.Sum256([]byte("account:" + name))
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// InstructionDiscriminator computes the dispatch tag for an instruction name.
func InstructionDiscriminator(name string) Discriminator {
	var d Discriminator
	sum := sha256.Sum256([]byte("global:" + name))
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

// decoder is a sticky-error cursor over an account's raw bytes. Field reads
// after the first failure are no-ops, so per-entity decode functions can read
// the full layout and check the error once.
type decoder struct {
	kind domain.EntityKind
	data []byte
	pos  int
	err  error
}

func newDecoder(kind domain.EntityKind, data []byte) *decoder {
	return &decoder{kind: kind, data: data}
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = &domain.DecodeError{Kind: d.kind, Reason: fmt.Sprintf(format, args...)}
	}
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.pos+n > len(d.data) {
		d.fail("truncated at offset %d: need %d bytes, have %d", d.pos, n, len(d.data)-d.pos)
		return nil
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b
}

// Discriminator reads and verifies the schema tag. A mismatch is a hard
// DecodeError; forward compatibility is not assumed.
func (d *decoder) Discriminator(want Discriminator) {
	b := d.take(DiscriminatorLength)
	if b == nil {
		return
	}
	var got Discriminator
	copy(got[:], b)
	if got != want {
		d.fail("discriminator mismatch: got %x, want %x", got, want)
	}
}

func (d *decoder) U8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) U32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) U64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) I64() int64 {
	return int64(d.U64()) //nolint:gosec // two's complement reinterpretation is the wire format
}

// BigU64 reads a u64 money field into a big.Int. Amounts are carried as
// arbitrary-precision integers end to end so no caller ever rounds them
// through a float.
func (d *decoder) BigU64() *big.Int {
	return new(big.Int).SetUint64(d.U64())
}

func (d *decoder) F64() float64 {
	return math.Float64frombits(d.U64())
}

func (d *decoder) Bool() bool {
	switch d.U8() {
	case 0:
		return false
	case 1:
		return true
	default:
		d.fail("invalid bool byte at offset %d", d.pos-1)
		return false
	}
}

// String reads a u32 length-prefixed UTF-8 string.
func (d *decoder) String() string {
	n := d.U32()
	if d.err != nil {
		return ""
	}
	if int(n) > len(d.data)-d.pos {
		d.fail("string length %d exceeds remaining %d bytes", n, len(d.data)-d.pos)
		return ""
	}
	b := d.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		d.fail("string at offset %d is not valid UTF-8", d.pos-int(n))
		return ""
	}
	return string(b)
}

func (d *decoder) Address() domain.Address {
	b := d.take(domain.AddressLength)
	if b == nil {
		return domain.ZeroAddress
	}
	addr, _ := domain.AddressFromBytes(b)
	return addr
}

// Finish asserts the full record was consumed and returns the accumulated
// error, if any. Trailing bytes mean the layouts disagree.
func (d *decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if d.pos != len(d.data) {
		d.fail("%d trailing bytes after offset %d", len(d.data)-d.pos, d.pos)
	}
	return d.err
}

// encoder builds the byte-exact inverse of decoder. The program performs the
// authoritative encode on chain; this one exists for round-trip tests and for
// instruction argument payloads.
type encoder struct {
	buf []byte
}

func newEncoder() *encoder {
	return &encoder{}
}

func (e *encoder) Discriminator(d Discriminator) {
	e.buf = append(e.buf, d[:]...)
}

func (e *encoder) U8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) U32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) U64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

func (e *encoder) I64(v int64) {
	e.U64(uint64(v)) //nolint:gosec // two's complement reinterpretation is the wire format
}

func (e *encoder) BigU64(v *big.Int) error {
	if v == nil {
		e.U64(0)
		return nil
	}
	if v.Sign() < 0 || !v.IsUint64() {
		return &domain.ValidationError{Reason: fmt.Sprintf("amount %s outside u64 range", v)}
	}
	e.U64(v.Uint64())
	return nil
}

func (e *encoder) F64(v float64) {
	e.U64(math.Float64bits(v))
}

func (e *encoder) Bool(v bool) {
	if v {
		e.U8(1)
	} else {
		e.U8(0)
	}
}

func (e *encoder) String(s string) {
	e.U32(uint32(len(s))) //nolint:gosec // account strings are far below 4GiB
	e.buf = append(e.buf, s...)
}

func (e *encoder) Address(a domain.Address) {
	e.buf = append(e.buf, a.Bytes()...)
}

func (e *encoder) Bytes() []byte {
	return e.buf
}

// appendCompactU16 appends the ledger's compact-u16 length encoding used in
// transaction messages (1-3 bytes, 7 value bits per byte).
func appendCompactU16(buf []byte, v uint16) []byte {
	for {
		if v < 0x80 {
			return append(buf, byte(v))
		}
		buf = append(buf, byte(v&0x7f)|0x80)
		v >>= 7
	}
}
