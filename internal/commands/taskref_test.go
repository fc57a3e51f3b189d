package commands

import (
	"testing"
)

func TestParseTaskRef_Numeric(t *testing.T) {
	num, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 5 {
		t.Errorf("expected 5, got %d", num)
	}
}

func TestParseTaskRef_HashPrefix(t *testing.T) {
	num, err := ParseTaskRef([]string{"#12"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 12 {
		t.Errorf("expected 12, got %d", num)
	}
}

func TestParseTaskRef_Required(t *testing.T) {
	_, err := ParseTaskRef(nil)
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"abc"}, "invalid task reference: abc"},
		{[]string{"#"}, "invalid task reference: #"},
		{[]string{"-1"}, "invalid task reference: -1"},
		{[]string{"0"}, "task number out of range: 0"},
		{[]string{"1", "2"}, "unexpected argument: 2"},
		{[]string{"١"}, "invalid task reference: ١"},
	}

	for _, tt := range tests {
		_, err := ParseTaskRef(tt.args)
		if err == nil {
			t.Errorf("%v: expected error", tt.args)
			continue
		}
		if err.Error() != tt.want {
			t.Errorf("%v: expected %q, got %q", tt.args, tt.want, err.Error())
		}
	}
}
