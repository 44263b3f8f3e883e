package fileid

import (
	"strings"
	"testing"
)

func TestContentID(t *testing.T) {
	id1 := ContentID([]byte("%PDF-1.4 week 1"))
	id2 := ContentID([]byte("%PDF-1.4 week 1"))
	if id1 != id2 {
		t.Errorf("same content should give same ID: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, contentPrefix) {
		t.Errorf("ID should have prefix %q: got %q", contentPrefix, id1)
	}
	if len(id1) != len(contentPrefix)+64 {
		t.Errorf("unexpected ID length: %q", id1)
	}
	if ContentID([]byte("%PDF-1.4 week 2")) == id1 {
		t.Error("different content should give different IDs")
	}
}

func TestContentID_empty(t *testing.T) {
	if got := ContentID(nil); got != ContentID([]byte{}) {
		t.Errorf("nil and empty content should match: %q", got)
	}
}

func TestPathID_normalized(t *testing.T) {
	id1 := PathID("/inbox/week1.pdf")
	id2 := PathID("/inbox/./week1.pdf")
	id3 := PathID("/inbox/sub/../week1.pdf")
	if id1 != id2 || id1 != id3 {
		t.Errorf("equivalent paths should match: %q %q %q", id1, id2, id3)
	}
	if !strings.HasPrefix(id1, pathPrefix) {
		t.Errorf("ID should have prefix %q: got %q", pathPrefix, id1)
	}
	if PathID("/inbox/week2.pdf") == id1 {
		t.Error("different paths should give different IDs")
	}
}
