package dictionary

import "testing"

func TestIsAdmin(t *testing.T) {
	cases := []struct {
		msgType string
		want    bool
	}{
		{MsgTypeLogon, true},
		{MsgTypeHeartbeat, true},
		{MsgTypeSequenceReset, true},
		{"D", false}, // NewOrderSingle
		{"8", false}, // ExecutionReport
	}
	for _, c := range cases {
		if got := IsAdmin(c.msgType); got != c.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", c.msgType, got, c.want)
		}
	}
}

func TestTagNameRoundTrip(t *testing.T) {
	tag, ok := TagOf("MsgSeqNum")
	if !ok || tag != TagMsgSeqNum {
		t.Fatalf("TagOf(MsgSeqNum) = %v, %v", tag, ok)
	}
	name, ok := NameOf(TagMsgSeqNum)
	if !ok || name != "MsgSeqNum" {
		t.Fatalf("NameOf(34) = %v, %v", name, ok)
	}
}

func TestLengthTagOf(t *testing.T) {
	lt, ok := LengthTagOf(96)
	if !ok || lt != 95 {
		t.Fatalf("LengthTagOf(RawData) = %v, %v, want 95, true", lt, ok)
	}
	if _, ok := LengthTagOf(TagMsgSeqNum); ok {
		t.Fatalf("LengthTagOf(MsgSeqNum) should not have a companion length tag")
	}
}

func TestEnumRoundTrip(t *testing.T) {
	wire, err := EnumWireValue(54, "Buy")
	if err != nil || wire != "1" {
		t.Fatalf("EnumWireValue(Side, Buy) = %q, %v", wire, err)
	}
	name, ok := EnumName(54, "1")
	if !ok || name != "Buy" {
		t.Fatalf("EnumName(Side, 1) = %q, %v", name, ok)
	}
	if _, err := EnumWireValue(54, "Unknown"); err == nil {
		t.Fatal("expected error for unknown enum name")
	}
}
