package table

import "testing"

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	row := Row{ID: 7, Username: "alice", Email: "alice@example.com"}
	var buf [RowSize]byte
	if err := SerializeRow(row, buf[:]); err != nil {
		t.Fatalf("SerializeRow: %v", err)
	}
	got, err := DeserializeRow(buf[:])
	if err != nil {
		t.Fatalf("DeserializeRow: %v", err)
	}
	if got != row {
		t.Errorf("round trip = %+v; want %+v", got, row)
	}
}

func TestSerializeRowRejectsWrongLength(t *testing.T) {
	if err := SerializeRow(Row{}, make([]byte, RowSize-1)); err == nil {
		t.Fatal("expected error for short destination buffer")
	}
}

func TestSerializeRowEnforcesFieldLimits(t *testing.T) {
	longUsername := make([]byte, MaxUsernameLen+1)
	for i := range longUsername {
		longUsername[i] = 'a'
	}
	var buf [RowSize]byte
	if err := SerializeRow(Row{Username: string(longUsername)}, buf[:]); err == nil {
		t.Error("expected error for username exceeding MaxUsernameLen")
	}

	longEmail := make([]byte, MaxEmailLen+1)
	for i := range longEmail {
		longEmail[i] = 'b'
	}
	if err := SerializeRow(Row{Email: string(longEmail)}, buf[:]); err == nil {
		t.Error("expected error for email exceeding MaxEmailLen")
	}
}

func TestSerializeRowAcceptsMaxLengthFields(t *testing.T) {
	username := make([]byte, MaxUsernameLen)
	for i := range username {
		username[i] = 'u'
	}
	email := make([]byte, MaxEmailLen)
	for i := range email {
		email[i] = 'e'
	}
	row := Row{ID: 1, Username: string(username), Email: string(email)}
	var buf [RowSize]byte
	if err := SerializeRow(row, buf[:]); err != nil {
		t.Fatalf("SerializeRow: %v", err)
	}
	got, err := DeserializeRow(buf[:])
	if err != nil {
		t.Fatalf("DeserializeRow: %v", err)
	}
	if got != row {
		t.Error("max-length fields did not round trip")
	}
}

func TestRowSizeConstants(t *testing.T) {
	if RowSize != 293 {
		t.Errorf("RowSize = %d; want 293", RowSize)
	}
	if LeafNodeMaxCells != 13 {
		t.Errorf("LeafNodeMaxCells = %d; want 13", LeafNodeMaxCells)
	}
}
