package table

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Row is the engine's single, hardcoded schema: an id, a username, and an
// email. Schema extensibility is out of scope (spec §1) — a complete SQL
// engine would parse CREATE TABLE and build this layout at runtime, but this
// engine bakes it in at compile time.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

const (
	// IDSize, UsernameSize, EmailSize are the serialized widths of Row's
	// fields. Username and Email are null-padded fixed-width byte strings
	// so every serialized row is exactly RowSize bytes.
	IDSize       = 4
	UsernameSize = 33
	EmailSize    = 256

	idOffset       = 0
	usernameOffset = idOffset + IDSize
	emailOffset    = usernameOffset + UsernameSize

	// RowSize is the total serialized size of a Row.
	RowSize = IDSize + UsernameSize + EmailSize

	// MaxUsernameLen and MaxEmailLen are the longest username/email that fit
	// in their null-padded fields (one byte is reserved so a full-width
	// value still round-trips through the trailing NUL trim on read).
	MaxUsernameLen = UsernameSize - 1
	MaxEmailLen    = EmailSize - 1
)

// SerializeRow copies row's fields into dst at fixed byte offsets:
// id at 0, username at 4, email at 37. dst must be exactly RowSize bytes.
func SerializeRow(row Row, dst []byte) error {
	if len(dst) != RowSize {
		return fmt.Errorf("table: SerializeRow: dst is %d bytes, want %d", len(dst), RowSize)
	}
	if len(row.Username) > MaxUsernameLen {
		return fmt.Errorf("table: SerializeRow: username %q exceeds %d bytes", row.Username, MaxUsernameLen)
	}
	if len(row.Email) > MaxEmailLen {
		return fmt.Errorf("table: SerializeRow: email %q exceeds %d bytes", row.Email, MaxEmailLen)
	}

	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[idOffset:idOffset+IDSize], row.ID)
	copy(dst[usernameOffset:usernameOffset+UsernameSize], row.Username)
	copy(dst[emailOffset:emailOffset+EmailSize], row.Email)
	return nil
}

// DeserializeRow is the inverse of SerializeRow. src must be exactly
// RowSize bytes; trailing NUL padding is trimmed off the text fields.
func DeserializeRow(src []byte) (Row, error) {
	if len(src) != RowSize {
		return Row{}, fmt.Errorf("table: DeserializeRow: src is %d bytes, want %d", len(src), RowSize)
	}
	id := binary.LittleEndian.Uint32(src[idOffset : idOffset+IDSize])
	username := trimPadding(src[usernameOffset : usernameOffset+UsernameSize])
	email := trimPadding(src[emailOffset : emailOffset+EmailSize])
	return Row{ID: id, Username: username, Email: email}, nil
}

func trimPadding(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}
