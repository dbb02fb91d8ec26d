package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/code-payments/code-bubblegum/pkg/solana/shortvec"
)

// Marshal encodes the transaction in the wire format accepted by
// sendTransaction: shortvec(signatures) followed by the legacy message.
func (t Transaction) Marshal() []byte {
	var b bytes.Buffer

	writeLen(&b, len(t.Signatures))
	for _, s := range t.Signatures {
		b.Write(s[:])
	}
	t.Message.encode(&b)

	return b.Bytes()
}

// Unmarshal decodes a legacy transaction. The signature count must match the
// message header and no bytes may follow the message.
func (t *Transaction) Unmarshal(b []byte) error {
	r := bytes.NewReader(b)

	sigLen, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read signature length")
	}

	t.Signatures = make([]Signature, sigLen)
	for i := range t.Signatures {
		if _, err := io.ReadFull(r, t.Signatures[i][:]); err != nil {
			return errors.Wrapf(err, "failed to read signature at %d", i)
		}
	}

	if err := t.Message.decode(r); err != nil {
		return err
	}

	if r.Len() > 0 {
		return errors.Errorf("%d trailing bytes after message", r.Len())
	}
	if sigLen != int(t.Message.Header.NumSignatures) {
		return errors.Errorf("signature count %d does not match header %d", sigLen, t.Message.Header.NumSignatures)
	}

	return nil
}

// Marshal returns the signed portion of the transaction.
func (m Message) Marshal() []byte {
	var b bytes.Buffer
	m.encode(&b)
	return b.Bytes()
}

func (m Message) encode(b *bytes.Buffer) {
	b.WriteByte(m.Header.NumSignatures)
	b.WriteByte(m.Header.NumReadonlySigned)
	b.WriteByte(m.Header.NumReadOnly)

	writeLen(b, len(m.Accounts))
	for _, a := range m.Accounts {
		b.Write(a)
	}

	b.Write(m.RecentBlockhash[:])

	writeLen(b, len(m.Instructions))
	for _, i := range m.Instructions {
		b.WriteByte(i.ProgramIndex)
		writeBytes(b, i.Accounts)
		writeBytes(b, i.Data)
	}
}

func (m *Message) decode(r *bytes.Reader) (err error) {
	if r.Len() == 0 {
		return errors.New("empty message")
	}

	if m.Header.NumSignatures, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num signatures")
	}
	if m.Header.NumSignatures > 127 {
		return errors.New("versioned messages not supported")
	}
	if m.Header.NumReadonlySigned, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly signatures")
	}
	if m.Header.NumReadOnly, err = r.ReadByte(); err != nil {
		return errors.Wrap(err, "failed to read num readonly")
	}

	accountLen, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read account len")
	}
	if err := m.Header.validate(accountLen); err != nil {
		return err
	}

	m.Accounts = make([]ed25519.PublicKey, accountLen)
	for i := range m.Accounts {
		m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		if _, err = io.ReadFull(r, m.Accounts[i]); err != nil {
			return errors.Wrapf(err, "failed to read account at index %d", i)
		}
	}

	if _, err = io.ReadFull(r, m.RecentBlockhash[:]); err != nil {
		return errors.Wrap(err, "failed to read recent block hash")
	}

	instructionLen, err := shortvec.DecodeLen(r)
	if err != nil {
		return errors.Wrap(err, "failed to read instruction len")
	}

	m.Instructions = make([]CompiledInstruction, instructionLen)
	for i := range m.Instructions {
		c := &m.Instructions[i]

		if c.ProgramIndex, err = r.ReadByte(); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] program index", i)
		}
		if int(c.ProgramIndex) >= accountLen {
			return errors.Errorf("program index out of range: %d:%d", i, c.ProgramIndex)
		}

		if c.Accounts, err = readBytes(r); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] accounts", i)
		}
		for _, index := range c.Accounts {
			if int(index) >= accountLen {
				return errors.Errorf("account index out of range: %d:%d", i, index)
			}
		}

		if c.Data, err = readBytes(r); err != nil {
			return errors.Wrapf(err, "failed to read instruction[%d] data", i)
		}
	}

	return nil
}

func (h Header) validate(accountLen int) error {
	if h.NumSignatures == 0 {
		return errors.New("message has no fee payer")
	}
	if h.NumReadonlySigned >= h.NumSignatures {
		return errors.New("fee payer must be writable")
	}
	if int(h.NumSignatures)+int(h.NumReadOnly) > accountLen {
		return errors.Errorf("header references %d accounts, message has %d", int(h.NumSignatures)+int(h.NumReadOnly), accountLen)
	}
	return nil
}

// Lengths of anything that fits in a packet are far below the shortvec limit.
func writeLen(b *bytes.Buffer, n int) {
	_, _ = shortvec.EncodeLen(b, n)
}

func writeBytes(b *bytes.Buffer, v []byte) {
	writeLen(b, len(v))
	b.Write(v)
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := shortvec.DecodeLen(r)
	if err != nil {
		return nil, err
	}
	if n > r.Len() {
		return nil, io.ErrUnexpectedEOF
	}

	v := make([]byte, n)
	_, err = io.ReadFull(r, v)
	return v, err
}
