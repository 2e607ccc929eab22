package wire

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CBOR", FormatCBOR, false},
		{"application/json", FormatJSON, false},
		{"application/json; charset=utf-8", FormatJSON, false},
		{"application/cbor", FormatCBOR, false},
		{"text/plain", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatContentType(t *testing.T) {
	if FormatJSON.ContentType() != "application/json" {
		t.Errorf("JSON content type = %q", FormatJSON.ContentType())
	}
	if FormatCBOR.ContentType() != "application/cbor" {
		t.Errorf("CBOR content type = %q", FormatCBOR.ContentType())
	}
	if Format(7).IsValid() {
		t.Error("Format(7) should be invalid")
	}
	if Format(7).String() != "Format(7)" {
		t.Errorf("Format(7).String() = %q", Format(7).String())
	}
}

func TestMalformedErrorMessage(t *testing.T) {
	err := malformed("limits[2].limitType", "missing required field")
	want := "malformed document at limits[2].limitType: missing required field"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFieldsOfRequired(t *testing.T) {
	type inner struct {
		A string `json:"a"`
	}
	type sample struct {
		inner
		Req   int      `json:"req"`
		Opt   *int     `json:"opt,omitempty"`
		Omit  []int    `json:"omit,omitempty"`
		Skip  int      `json:"-"`
		Ptr   *string  `json:"ptr"`
		Plain float64
	}

	got := map[string]bool{}
	for _, f := range fieldsOf(reflectTypeOf[sample]()) {
		got[f.name] = f.required
	}

	want := map[string]bool{"a": true, "req": true, "opt": false, "omit": false, "ptr": false, "Plain": true}
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %q required = %v, want %v", k, got[k], v)
		}
	}
}
