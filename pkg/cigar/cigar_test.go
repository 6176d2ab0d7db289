package cigar

import (
	"errors"
	"reflect"
	"testing"

	"github.com/biogo/hts/sam"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want sam.Cigar
	}{
		{"", nil},
		{"3=", sam.Cigar{sam.NewCigarOp(sam.CigarEqual, 3)}},
		{"10M2I3D", sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 10),
			sam.NewCigarOp(sam.CigarInsertion, 2),
			sam.NewCigarOp(sam.CigarDeletion, 3),
		}},
		{"1N1S1H1P1X1B", sam.Cigar{
			sam.NewCigarOp(sam.CigarSkipped, 1),
			sam.NewCigarOp(sam.CigarSoftClipped, 1),
			sam.NewCigarOp(sam.CigarHardClipped, 1),
			sam.NewCigarOp(sam.CigarPadded, 1),
			sam.NewCigarOp(sam.CigarMismatch, 1),
			sam.NewCigarOp(sam.CigarBack, 1),
		}},
		{"0=", sam.Cigar{sam.NewCigarOp(sam.CigarEqual, 0)}},
	}

	for _, test := range tests {
		got, err := Decode(test.in)
		if err != nil {
			t.Errorf("Decode(%q): unexpected error: %v", test.in, err)
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("Decode(%q) = %v, want %v", test.in, got, test.want)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, s := range []string{
		"3",      // length with no operation
		"=",      // operation with no length
		"3=4",    // trailing length
		"3=Q",    // missing length before unknown letter
		"3Q",     // unknown operation
		"3=x4=",  // lowercase operation
		"3= 4=",  // embedded space
		"-3=",    // sign is not part of the grammar
	} {
		if _, err := Decode(s); !errors.Is(err, ErrMalformedCigar) {
			t.Errorf("Decode(%q): expected ErrMalformedCigar, got %v", s, err)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, s := range []string{"", "3=", "4=1X2I5D3=", "2S3=1N4=", "10M3B11M"} {
		c, err := Decode(s)
		if err != nil {
			t.Fatalf("Decode(%q): %v", s, err)
		}
		if got := Encode(c); got != s {
			t.Errorf("Encode(Decode(%q)) = %q", s, got)
		}
	}
}

func TestAppend(t *testing.T) {
	var c sam.Cigar
	c = Append(c, sam.CigarEqual, 0)
	if len(c) != 0 {
		t.Errorf("zero-length op retained: %v", c)
	}
	c = Append(c, sam.CigarEqual, 3)
	c = Append(c, sam.CigarEqual, 2)
	c = Append(c, sam.CigarInsertion, 1)
	c = Append(c, sam.CigarInsertion, 0)
	c = Append(c, sam.CigarDeletion, 4)
	if got, want := Encode(c), "5=1I4D"; got != want {
		t.Errorf("Append sequence = %q, want %q", got, want)
	}
}

func TestConsumes(t *testing.T) {
	tests := []struct {
		t           sam.CigarOpType
		query, path bool
	}{
		{sam.CigarMatch, false, false},
		{sam.CigarInsertion, true, false},
		{sam.CigarDeletion, false, true},
		{sam.CigarSkipped, false, false},
		{sam.CigarSoftClipped, false, false},
		{sam.CigarHardClipped, false, false},
		{sam.CigarPadded, false, false},
		{sam.CigarEqual, true, true},
		{sam.CigarMismatch, true, true},
		{sam.CigarBack, false, false},
	}
	for _, test := range tests {
		if got := ConsumesQuery(test.t); got != test.query {
			t.Errorf("ConsumesQuery(%v) = %v, want %v", test.t, got, test.query)
		}
		if got := ConsumesPath(test.t); got != test.path {
			t.Errorf("ConsumesPath(%v) = %v, want %v", test.t, got, test.path)
		}
	}
}

func TestLengths(t *testing.T) {
	c, err := Decode("2I3=1X4D")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := QueryLength(c), 6; got != want {
		t.Errorf("QueryLength = %d, want %d", got, want)
	}
	if got, want := PathLength(c), 8; got != want {
		t.Errorf("PathLength = %d, want %d", got, want)
	}
}
