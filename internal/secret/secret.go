// internal/secret/secret.go
//
// Deterministic secret selection. The same (salt, seed, episode index) always
// maps to the same answer, so evaluation datasets are reproducible across
// machines without shipping the secrets themselves.

package secret

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
)

// Index returns HMAC-SHA256(salt, key) % n, or 0 when n <= 0.
func Index(salt, key string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(key))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Key formats the HMAC input for an episode.
func Key(seed int64, episode int) string {
	return strconv.FormatInt(seed, 10) + ":" + strconv.Itoa(episode)
}

// Source is the answer list a Picker draws from.
type Source interface {
	At(i int) string
	Stats() (answers int, allowed int)
}

// Picker chooses secrets reproducibly.
type Picker struct {
	Salt   string
	Source Source
}

// NewPicker returns a Picker over src.
func NewPicker(salt string, src Source) *Picker {
	return &Picker{Salt: salt, Source: src}
}

// Pick returns the secret for episode i of the run identified by seed.
func (p *Picker) Pick(seed int64, episode int) string {
	n, _ := p.Source.Stats()
	return p.Source.At(Index(p.Salt, Key(seed, episode), n))
}
