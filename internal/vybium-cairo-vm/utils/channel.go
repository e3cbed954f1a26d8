package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Channel is a Fiat-Shamir transcript. Claims are committed by sending
// their fields in order and reading back the state.
type Channel struct {
	state    []byte
	proof    []string
	hashFunc string
}

// NewChannel creates a new channel. An empty hashFunc means sha3.
func NewChannel(hashFunc string) *Channel {
	if hashFunc == "" {
		hashFunc = "sha3"
	}
	return &Channel{
		state:    []byte{0},
		proof:    make([]string, 0, 64),
		hashFunc: hashFunc,
	}
}

// Send appends data to the channel state
func (c *Channel) Send(data []byte) {
	c.proof = append(c.proof, fmt.Sprintf("send:%s", hex.EncodeToString(data)))
	c.state = c.hash(append(c.state, data...))
}

// SendUint64 sends v as 8 big-endian bytes
func (c *Channel) SendUint64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	c.Send(buf[:])
}

// State returns the current channel state
func (c *Channel) State() []byte {
	return append([]byte(nil), c.state...)
}

// Proof returns the transcript
func (c *Channel) Proof() []string {
	return append([]string(nil), c.proof...)
}

func (c *Channel) hash(data []byte) []byte {
	if c.hashFunc == "sha256" {
		h := sha256.Sum256(data)
		return h[:]
	}
	h := sha3.Sum256(data)
	return h[:]
}

// String returns the transcript joined by spaces
func (c *Channel) String() string {
	return strings.Join(c.proof, " ")
}
