package synth

import "testing"

func TestDomainWrap(t *testing.T) {
	d := NewDomain(8)
	if d.Add(200, 100) != 44 {
		t.Error("invalid add")
	}
	if d.Sub(0, 1) != 0xff {
		t.Error("invalid sub")
	}
	if d.Mul(16, 16) != 0 {
		t.Error("invalid mul")
	}
	if d.Neg(1) != 0xff {
		t.Error("invalid neg")
	}
	if d.Not(0) != 0xff {
		t.Error("invalid not")
	}
}

func TestDomainShiftBeyondWidth(t *testing.T) {
	d := NewDomain(8)
	if d.Shl(1, 8) != 0 {
		t.Error("invalid shl")
	}
	if d.Lshr(0xff, 9) != 0 {
		t.Error("invalid lshr")
	}
	if d.Ashr(0x80, 100) != 0xff {
		t.Error("invalid ashr of negative")
	}
	if d.Ashr(0x7f, 100) != 0 {
		t.Error("invalid ashr of positive")
	}
	if d.Ashr(0xf0, 4) != 0xff {
		t.Error("invalid ashr")
	}
}

func TestDomainCompareMaskValued(t *testing.T) {
	d := NewDomain(8)
	if d.Ult(1, 2) != 0xff || d.Ult(2, 1) != 0 || d.Ult(1, 1) != 0 {
		t.Error("invalid ult")
	}
	// 0xff is -1, 0x00 is 0
	if d.Slt(0xff, 0) != 0xff || d.Slt(0, 0xff) != 0 {
		t.Error("invalid slt")
	}
	if d.Ite(0xff, 3, 4) != 3 || d.Ite(0, 3, 4) != 4 || d.Ite(1, 3, 4) != 3 {
		t.Error("invalid ite")
	}
}

func TestDomainSignedRange(t *testing.T) {
	d := NewDomain(4)
	if d.MinSigned() != 8 || d.MaxSigned() != 7 || d.AllOnes() != 15 {
		t.Error("invalid signed range")
	}
	if d.AsInt64(8) != -8 || d.AsInt64(7) != 7 {
		t.Error("invalid sign extension")
	}
}

func TestDomainWidth64(t *testing.T) {
	d := NewDomain(64)
	if d.Mask != ^uint64(0) {
		t.Error("invalid mask")
	}
	if d.Add(^uint64(0), 1) != 0 {
		t.Error("invalid add")
	}
}
