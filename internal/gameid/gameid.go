// Package gameid issues session identifiers: a UUIDv7 rendered as 26
// lowercase Crockford base32 characters, so IDs sort by creation time.
package gameid

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded ID
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator creates IDs from a time source and a random source
type Generator struct {
	now     func() time.Time
	entropy io.Reader
}

// NewGenerator creates a generator. Nil arguments fall back to time.Now and
// crypto/rand.
func NewGenerator(now func() time.Time, entropy io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{now: now, entropy: entropy}
}

// Generate returns a new ID using the current time and crypto/rand
func Generate() string {
	id, err := NewGenerator(nil, nil).Generate()
	if err != nil {
		panic("gameid: " + err.Error())
	}
	return id
}

// Generate returns a new ID
func (g *Generator) Generate() (string, error) {
	var uuid [16]byte

	// 48-bit millisecond timestamp, then random bits
	ms := uint64(g.now().UnixMilli())
	binary.BigEndian.PutUint16(uuid[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(uuid[2:6], uint32(ms))

	if _, err := io.ReadFull(g.entropy, uuid[6:]); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // RFC 4122 variant

	return encoding.EncodeToString(uuid[:]), nil
}

// Validate checks that id decodes to a version 7 UUID
func Validate(id string) error {
	_, err := decode(id)
	return err
}

// Time returns the creation time embedded in id
func Time(id string) (time.Time, error) {
	uuid, err := decode(id)
	if err != nil {
		return time.Time{}, err
	}
	ms := uint64(binary.BigEndian.Uint16(uuid[0:2]))<<32 | uint64(binary.BigEndian.Uint32(uuid[2:6]))
	return time.UnixMilli(int64(ms)).UTC(), nil
}

func decode(id string) ([16]byte, error) {
	var uuid [16]byte
	if len(id) != Length {
		return uuid, fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	raw, err := encoding.DecodeString(id)
	if err != nil {
		return uuid, fmt.Errorf("invalid game ID %q: %w", id, err)
	}
	copy(uuid[:], raw)
	if uuid[6]>>4 != 7 {
		return uuid, fmt.Errorf("game ID %q is not a version 7 UUID", id)
	}
	return uuid, nil
}
