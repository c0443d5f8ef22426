package library

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/eringen/gallery/query"
)

func TestParseFileName(t *testing.T) {
	tests := []struct {
		file   string
		name   string
		author string
	}{
		{"sunset.png", "sunset", ""},
		{"Sunset.Jane%20Doe.png", "Sunset", "Jane Doe"},
		{"a%2Eb.c.jpg", "a.b", "c"},
		{"name.author.extra.png", "name", "author"},
		{"bad%zz.png", "bad%zz", ""},
		{"noext", "noext", ""},
		{"%D0%9A%D0%BE%D1%82.%D0%9C%D0%B0%D1%88%D0%B0.png", "Кот", "Маша"},
		{"lonely..png", "lonely", ""},
	}
	for _, tt := range tests {
		name, author := ParseFileName(tt.file)
		if name != tt.name || author != tt.author {
			t.Errorf("ParseFileName(%q) = %q, %q, want %q, %q", tt.file, name, author, tt.name, tt.author)
		}
	}
}

func TestEncodeFileNameRoundTrip(t *testing.T) {
	tests := []struct{ name, author string }{
		{"Sunset", "Jane Doe"},
		{"v1.2 draft", ""},
		{"Кот", "Маша"},
	}
	for _, tt := range tests {
		file := EncodeFileName(tt.name, tt.author, ".PNG")
		if !strings.HasSuffix(file, ".png") {
			t.Errorf("EncodeFileName(%q, %q) = %q, want .png suffix", tt.name, tt.author, file)
		}
		name, author := ParseFileName(file)
		if name != tt.name || author != tt.author {
			t.Errorf("round trip of %q = %q, %q", file, name, author)
		}
	}
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("/images/", "Sunset.Jane%20Doe.png")
	if r.Src != "/images/Sunset.Jane%2520Doe.png" {
		t.Errorf("Src = %q", r.Src)
	}
	if r.Name != "Sunset" || r.Author != "Jane Doe" {
		t.Errorf("record = %+v", r)
	}
	if r.Field("ext") != "png" || r.Field("author") != "Jane Doe" || r.Field("nope") != "" {
		t.Errorf("Field lookups wrong for %+v", r)
	}
	if r.Caption() != "Sunset, Jane Doe" {
		t.Errorf("Caption = %q", r.Caption())
	}
}

func TestRecordJSONNullAuthor(t *testing.T) {
	b, err := json.Marshal(NewRecord("/images", "sunset.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"author":null`) {
		t.Errorf("json = %s, want null author", b)
	}
	b, _ = json.Marshal(NewRecord("/images", "sunset.bob.png"))
	if !strings.Contains(string(b), `"author":"bob"`) {
		t.Errorf("json = %s, want author bob", b)
	}
}

func TestRecordsWithQuery(t *testing.T) {
	recs := []Record{
		NewRecord("/i", "sunset.Jane%20Doe.png"),
		NewRecord("/i", "sunset.png"),
		NewRecord("/i", "harbor.bob.jpg"),
	}
	if got := query.Filter(recs, query.Parse("author:jane")); len(got) != 1 || got[0].File != recs[0].File {
		t.Errorf("author:jane = %v", got)
	}
	if got := query.Filter(recs, query.Parse("author:anything")); len(got) != 0 {
		t.Errorf("author:anything = %v, want none", got)
	}
	if got := query.Filter(recs, query.Parse("ext:jpg")); len(got) != 1 || got[0].Name != "harbor" {
		t.Errorf("ext:jpg = %v", got)
	}
	if got := query.Filter(recs, query.Parse("sunset")); len(got) != 2 {
		t.Errorf("sunset = %d records, want 2", len(got))
	}
}
