package artifact

import (
	"bytes"
	"context"
	"testing"
)

func TestDisk_PutGet(t *testing.T) {
	ctx := context.Background()
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	data := []byte("jpeg bytes")
	ref, err := d.Put(ctx, data)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if ref == "" {
		t.Fatal("empty reference")
	}

	got, err := d.Get(ctx, ref)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get returned %q, want %q", got, data)
	}
}

func TestDisk_UniqueRefs(t *testing.T) {
	ctx := context.Background()
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	a, _ := d.Put(ctx, []byte("a"))
	b, _ := d.Put(ctx, []byte("b"))
	if a == b {
		t.Errorf("two artifacts share reference %q", a)
	}
}

func TestDisk_GetRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	d, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	for _, ref := range []string{"", "../secret", "a/b.jpg", ".hidden"} {
		if _, err := d.Get(ctx, ref); err == nil {
			t.Errorf("Get(%q) should fail", ref)
		}
	}
}
