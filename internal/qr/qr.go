// Package qr builds signed ticket payloads and renders them as PNG QR codes.
package qr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"eventtix/registrar/pkg/crypto"
)

var ErrInvalidPayload = errors.New("invalid qr payload")

// Payload is the content encoded into a ticket QR code.
type Payload struct {
	Serial    string
	Name      string
	Email     string
	Signature string
}

func (p Payload) signedData() string {
	return fmt.Sprintf("%s:%s:%s", p.Serial, p.Name, strings.ToLower(p.Email))
}

// String encodes the payload as "ticket:…;name:…;email:…;signature:…".
func (p Payload) String() string {
	return fmt.Sprintf("ticket:%s;name:%s;email:%s;signature:%s",
		p.Serial, sanitize(p.Name), p.Email, p.Signature)
}

// Parse decodes a scanned payload string.
func Parse(data string) (Payload, error) {
	parts := strings.Split(data, ";")
	if len(parts) != 4 {
		return Payload{}, ErrInvalidPayload
	}
	fields := make([]string, 0, 4)
	for i, prefix := range []string{"ticket:", "name:", "email:", "signature:"} {
		if !strings.HasPrefix(parts[i], prefix) {
			return Payload{}, ErrInvalidPayload
		}
		fields = append(fields, strings.TrimPrefix(parts[i], prefix))
	}
	return Payload{Serial: fields[0], Name: fields[1], Email: fields[2], Signature: fields[3]}, nil
}

// sanitize keeps free-form names from breaking the field separators.
func sanitize(s string) string {
	return strings.NewReplacer(";", ",", "\n", " ", "\r", " ").Replace(s)
}

// Signer signs and verifies payloads with an HMAC key.
type Signer struct {
	key []byte
}

func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

func (s *Signer) Sign(serial, name, email string) Payload {
	p := Payload{Serial: serial, Name: sanitize(name), Email: email}
	p.Signature = crypto.Sign(s.key, p.signedData())
	return p
}

func (s *Signer) Verify(p Payload) bool {
	return crypto.Verify(s.key, p.signedData(), p.Signature)
}

type Renderer interface {
	Render(p Payload) ([]byte, error)
}

type pngRenderer struct {
	size int
}

func NewPNGRenderer(size int) Renderer {
	if size <= 0 {
		size = 256
	}
	return &pngRenderer{size: size}
}

func (r *pngRenderer) Render(p Payload) ([]byte, error) {
	png, err := qrcode.Encode(p.String(), qrcode.Medium, r.size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
