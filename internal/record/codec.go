package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Block layout, all integers are little endian
//
//	status        2 bytes   bit 2 set = deleted
//	id            4 bytes   int32
//	first name  120 bytes   zero padded text
//	last name   120 bytes   zero padded text
//	year          4 bytes   int32
//	month         4 bytes   int32
//	day           4 bytes   int32
//	school grade  2 bytes   int16
//	average mark 16 bytes   lo, mid, hi (96 bit magnitude), flags (scale in bits 16-23, sign in bit 31)
//	class letter  2 bytes   UTF-16 code unit
const (
	statusSize      = 2
	idSize          = 4
	nameSize        = 120
	dateSize        = 4 * 3
	schoolGradeSize = 2
	averageMarkSize = 16
	classLetterSize = 2

	statusOffset      = 0
	idOffset          = statusOffset + statusSize
	firstNameOffset   = idOffset + idSize
	lastNameOffset    = firstNameOffset + nameSize
	dateOffset        = lastNameOffset + nameSize
	schoolGradeOffset = dateOffset + dateSize
	averageMarkOffset = schoolGradeOffset + schoolGradeSize
	classLetterOffset = averageMarkOffset + averageMarkSize

	// BlockSize is the number of bytes every record occupies in the data file
	BlockSize = classLetterOffset + classLetterSize

	// DataOffset is where the user editable part of a block starts, Edit rewrites the block from here
	DataOffset = firstNameOffset
)

// StatusDeleted is the tombstone bit of the status word
const StatusDeleted uint16 = 1 << 2

const maxDecimalScale = 28

// TextEncoding selects how names are stored in a block
type TextEncoding string

const (
	UTF8  TextEncoding = "utf-8"
	UTF16 TextEncoding = "utf-16"
)

// ParseTextEncoding accepts "utf-8"/"utf8" and "utf-16"/"utf16", ignoring case
func ParseTextEncoding(s string) (TextEncoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "utf-8", "utf8", "":
		return UTF8, nil
	case "utf-16", "utf16":
		return UTF16, nil
	}
	return "", fmt.Errorf("unsupported text encoding %q", s)
}

// Codec converts records to and from fixed size blocks. A Codec is stateless apart from the text
// encoding and can be shared
type Codec struct {
	textEncoding TextEncoding
	enc          encoding.Encoding
}

// NewCodec returns a codec that stores names using the given encoding
func NewCodec(te TextEncoding) (*Codec, error) {
	c := &Codec{textEncoding: te}
	switch te {
	case UTF8:
		c.enc = unicode.UTF8
	case UTF16:
		c.enc = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	default:
		return nil, fmt.Errorf("unsupported text encoding %q", te)
	}
	return c, nil
}

// TextEncoding returns the encoding used for names
func (c *Codec) TextEncoding() TextEncoding {
	return c.textEncoding
}

// Encode returns a new block holding the record, with a clear status word
func (c *Codec) Encode(r Record) ([]byte, error) {
	buf := make([]byte, BlockSize)
	if err := c.EncodeInto(buf, r); err != nil {
		return nil, err
	}
	return buf, nil
}

// EncodeInto writes the whole record into buf, which must be at least BlockSize long
func (c *Codec) EncodeInto(buf []byte, r Record) error {
	if len(buf) < BlockSize {
		return fmt.Errorf("%w: buffer of %d bytes", ErrShortBlock, len(buf))
	}
	binary.LittleEndian.PutUint16(buf[statusOffset:], 0)
	binary.LittleEndian.PutUint32(buf[idOffset:], uint32(r.ID))
	return c.EncodeData(buf[DataOffset:BlockSize], r.PersonalData)
}

// EncodeData writes only the editable fields. buf must be the region of a block starting at DataOffset
func (c *Codec) EncodeData(buf []byte, data PersonalData) error {
	if len(buf) < BlockSize-DataOffset {
		return fmt.Errorf("%w: buffer of %d bytes", ErrShortBlock, len(buf))
	}
	mark, err := encodeDecimal(data.AverageMark)
	if err != nil {
		return err
	}
	if data.ClassLetter < 0 || data.ClassLetter > 0xFFFF {
		return fmt.Errorf("class letter %q is not a single UTF-16 code unit", data.ClassLetter)
	}
	base := DataOffset
	if err := c.putText(buf[firstNameOffset-base:firstNameOffset-base+nameSize], data.FirstName); err != nil {
		return err
	}
	if err := c.putText(buf[lastNameOffset-base:lastNameOffset-base+nameSize], data.LastName); err != nil {
		return err
	}
	year, month, day := data.DateOfBirth.Date()
	binary.LittleEndian.PutUint32(buf[dateOffset-base:], uint32(int32(year)))
	binary.LittleEndian.PutUint32(buf[dateOffset-base+4:], uint32(int32(month)))
	binary.LittleEndian.PutUint32(buf[dateOffset-base+8:], uint32(int32(day)))
	binary.LittleEndian.PutUint16(buf[schoolGradeOffset-base:], uint16(data.SchoolGrade))
	for i, part := range mark {
		binary.LittleEndian.PutUint32(buf[averageMarkOffset-base+4*i:], part)
	}
	binary.LittleEndian.PutUint16(buf[classLetterOffset-base:], uint16(data.ClassLetter))
	return nil
}

// TryDecode decodes a block. It returns false for tombstoned or malformed blocks; a tombstone is
// recognized from the status word alone
func (c *Codec) TryDecode(buf []byte) (Record, bool) {
	r, err := c.Decode(buf)
	return r, err == nil
}

// Decode decodes a block, returning ErrDeleted for tombstones and an error wrapping ErrFormat or
// ErrShortBlock for blocks that cannot be parsed
func (c *Codec) Decode(buf []byte) (Record, error) {
	if len(buf) < BlockSize {
		return Record{}, fmt.Errorf("%w: got %d of %d bytes", ErrShortBlock, len(buf), BlockSize)
	}
	if IsDeleted(buf) {
		return Record{}, ErrDeleted
	}

	firstName, err := c.getText(buf[firstNameOffset : firstNameOffset+nameSize])
	if err != nil {
		return Record{}, fmt.Errorf("%w: first name: %v", ErrFormat, err)
	}
	lastName, err := c.getText(buf[lastNameOffset : lastNameOffset+nameSize])
	if err != nil {
		return Record{}, fmt.Errorf("%w: last name: %v", ErrFormat, err)
	}

	year := int32(binary.LittleEndian.Uint32(buf[dateOffset:]))
	month := int32(binary.LittleEndian.Uint32(buf[dateOffset+4:]))
	day := int32(binary.LittleEndian.Uint32(buf[dateOffset+8:]))
	dob, ok := makeDate(year, month, day)
	if !ok {
		return Record{}, fmt.Errorf("%w: invalid date %d-%d-%d", ErrFormat, year, month, day)
	}

	var parts [4]uint32
	for i := range parts {
		parts[i] = binary.LittleEndian.Uint32(buf[averageMarkOffset+4*i:])
	}
	mark, err := decodeDecimal(parts)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID: IDOf(buf),
		PersonalData: PersonalData{
			FirstName:   firstName,
			LastName:    lastName,
			DateOfBirth: dob,
			SchoolGrade: int16(binary.LittleEndian.Uint16(buf[schoolGradeOffset:])),
			AverageMark: mark,
			ClassLetter: rune(binary.LittleEndian.Uint16(buf[classLetterOffset:])),
		},
	}, nil
}

// Status returns the status word of a block
func Status(buf []byte) uint16 {
	return binary.LittleEndian.Uint16(buf[statusOffset:])
}

// SetStatus overwrites the status word of a block
func SetStatus(buf []byte, status uint16) {
	binary.LittleEndian.PutUint16(buf[statusOffset:], status)
}

// IsDeleted reports whether the tombstone bit of the block is set
func IsDeleted(buf []byte) bool {
	return Status(buf)&StatusDeleted != 0
}

// IDOf returns the id stored in a block without decoding the rest of it
func IDOf(buf []byte) int32 {
	return int32(binary.LittleEndian.Uint32(buf[idOffset:]))
}

// Fit returns the data as it reads back after encoding: names are cut at the last character that
// fits into the field, at the first zero character, and invalid bytes become U+FFFD
func (c *Codec) Fit(data PersonalData) PersonalData {
	data.FirstName = c.fitText(data.FirstName)
	data.LastName = c.fitText(data.LastName)
	return data
}

func (c *Codec) fitText(s string) string {
	var b strings.Builder
	width := 0
	for _, r := range s {
		if r == 0 {
			break
		}
		n := c.runeWidth(r)
		if width+n > nameSize {
			break
		}
		width += n
		b.WriteRune(r)
	}
	return b.String()
}

// putText encodes s and copies it into the zero padded field, see fitText for how s is cut
func (c *Codec) putText(field []byte, s string) error {
	clear(field)
	encoded, err := c.enc.NewEncoder().String(c.fitText(s))
	if err != nil {
		return fmt.Errorf("encoding %q: %w", s, err)
	}
	copy(field, encoded)
	return nil
}

func (c *Codec) runeWidth(r rune) int {
	if c.textEncoding == UTF16 {
		if r >= 0x10000 {
			return 4
		}
		return 2
	}
	n := utf8.RuneLen(r)
	if n < 0 {
		// Invalid runes are replaced with U+FFFD by the encoder
		return 3
	}
	return n
}

// getText decodes a zero padded field. UTF-8 text ends at the first zero byte, UTF-16 text at the
// first zero code unit
func (c *Codec) getText(field []byte) (string, error) {
	end := len(field)
	if c.textEncoding == UTF16 {
		for i := 0; i+1 < len(field); i += 2 {
			if field[i] == 0 && field[i+1] == 0 {
				end = i
				break
			}
		}
		end -= end % 2
	} else if i := bytes.IndexByte(field, 0); i >= 0 {
		end = i
	}
	return c.enc.NewDecoder().String(string(field[:end]))
}

func makeDate(year, month, day int32) (time.Time, bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := Date(int(year), time.Month(month), int(day))
	// time.Date normalizes 31 Feb into March
	if t.Day() != int(day) {
		return time.Time{}, false
	}
	return t, true
}

var mask32 = big.NewInt(0xFFFFFFFF)

func encodeDecimal(d decimal.Decimal) ([4]uint32, error) {
	var parts [4]uint32
	exp := d.Exponent()
	if exp < -maxDecimalScale {
		d = d.Round(maxDecimalScale)
		exp = d.Exponent()
	}
	coef := d.Coefficient()
	scale := uint32(0)
	if exp > 0 {
		coef.Mul(coef, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	} else {
		scale = uint32(-exp)
	}
	negative := coef.Sign() < 0
	coef.Abs(coef)
	if coef.BitLen() > 96 {
		return parts, fmt.Errorf("%w: %s", ErrMarkOutOfRange, d.String())
	}
	parts[0] = uint32(new(big.Int).And(coef, mask32).Uint64())
	parts[1] = uint32(new(big.Int).And(new(big.Int).Rsh(coef, 32), mask32).Uint64())
	parts[2] = uint32(new(big.Int).Rsh(coef, 64).Uint64())
	parts[3] = scale << 16
	if negative {
		parts[3] |= 1 << 31
	}
	return parts, nil
}

func decodeDecimal(parts [4]uint32) (decimal.Decimal, error) {
	flags := parts[3]
	scale := (flags >> 16) & 0xFF
	if flags&0x7F00FFFF != 0 || scale > maxDecimalScale {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid decimal flags %#x", ErrFormat, flags)
	}
	coef := new(big.Int).SetUint64(uint64(parts[2]))
	coef.Lsh(coef, 32).Or(coef, new(big.Int).SetUint64(uint64(parts[1])))
	coef.Lsh(coef, 32).Or(coef, new(big.Int).SetUint64(uint64(parts[0])))
	if flags&(1<<31) != 0 {
		coef.Neg(coef)
	}
	return decimal.NewFromBigInt(coef, -int32(scale)), nil
}
