package decode

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

type item struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    []JSONOption
		want    item
		wantErr bool
	}{
		{name: "object", input: `{"id":1}`, want: item{ID: 1}},
		{name: "trailing whitespace", input: "{\"id\":2,\"name\":\"b\"}\n", want: item{ID: 2, Name: "b"}},
		{name: "unknown field tolerated", input: `{"id":3,"extra":true}`, want: item{ID: 3}},
		{name: "unknown field strict", input: `{"id":3,"extra":true}`, opts: []JSONOption{Strict()}, wantErr: true},
		{name: "malformed", input: `{"id":`, wantErr: true},
		{name: "empty", input: ``, wantErr: true},
		{name: "trailing garbage", input: `{"id":1} {"id":2}`, wantErr: true},
		{name: "trailing word", input: `{"id":1} x`, wantErr: true},
		{name: "stray closing brace", input: `{"id":1}}`, wantErr: true},
		{name: "stray closing bracket", input: `{"id":1}]`, wantErr: true},
		{name: "wrong type", input: `{"id":"one"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON[item](tt.opts...).Decode([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestJSON_Any(t *testing.T) {
	got, err := JSON[map[string]any]().Decode([]byte(`{"id":1}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got["id"] != float64(1) {
		t.Errorf("id = %v, want 1", got["id"])
	}
}

func TestYAML(t *testing.T) {
	got, err := YAML[item]().Decode([]byte("id: 7\nname: seven\n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != (item{ID: 7, Name: "seven"}) {
		t.Errorf("Decode() = %+v", got)
	}

	if _, err := YAML[item]().Decode([]byte("id: [unclosed")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestProto(t *testing.T) {
	dec := Proto(func() *structpb.Struct { return &structpb.Struct{} })

	got, err := dec.Decode([]byte(`{"id":1,"tags":["a","b"]}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if id := got.GetFields()["id"].GetNumberValue(); id != 1 {
		t.Errorf("id = %v, want 1", id)
	}
	if n := len(got.GetFields()["tags"].GetListValue().GetValues()); n != 2 {
		t.Errorf("len(tags) = %d, want 2", n)
	}

	if _, err := dec.Decode([]byte(`[1,2]`)); err == nil {
		t.Error("expected error decoding an array into a Struct")
	}
}

func TestRawAndText(t *testing.T) {
	raw, err := Raw().Decode([]byte("abc"))
	if err != nil || string(raw) != "abc" {
		t.Errorf("Raw() = %q, %v", raw, err)
	}

	text, err := Text().Decode([]byte("hello"))
	if err != nil || text != "hello" {
		t.Errorf("Text() = %q, %v", text, err)
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		input   string
		wantErr bool
	}{
		{format: "json", input: `{"id":1}`},
		{format: "", input: `{"id":1}`},
		{format: "YAML", input: "id: 1"},
		{format: "yml", input: "id: 1"},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dec, err := ForFormat[item](tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, err := dec.Decode([]byte(tt.input))
			if err != nil || got.ID != 1 {
				t.Errorf("Decode() = %+v, %v", got, err)
			}
		})
	}
}
