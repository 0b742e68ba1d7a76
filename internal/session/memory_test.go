package session

import (
	"context"
	"testing"
	"time"

	"github.com/fieldreg/member-registration/internal/model"
)

func TestMemoryStore_SetThenGet(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(30 * time.Minute)
	want := Session{
		Started:    true,
		RollNumber: "20240501AG74321",
		RefID:      "REF9",
		Form:       &model.Registration{FamilyName: "Cruz", FirstName: "Ana"},
	}
	if err := s.Set(context.Background(), "tok1", want); err != nil {
		t.Fatalf("Set() err=%v", err)
	}

	got, ok, err := s.Get(context.Background(), "tok1")
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if !ok {
		t.Fatal("Get() ok=false, want true")
	}
	if got.RollNumber != want.RollNumber || got.RefID != want.RefID || !got.Started {
		t.Fatalf("Get()=%+v, want %+v", got, want)
	}
	if got.Form == nil || got.Form.FamilyName != "Cruz" {
		t.Fatalf("Get() form=%+v, want family name Cruz", got.Form)
	}
}

func TestMemoryStore_UnknownToken(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(30 * time.Minute)
	if _, ok, err := s.Get(context.Background(), "nope"); err != nil || ok {
		t.Fatalf("Get() ok=%v err=%v, want false nil", ok, err)
	}
}

func TestMemoryStore_Destroy(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(30 * time.Minute)
	if err := s.Set(context.Background(), "tok", Session{Started: true}); err != nil {
		t.Fatalf("Set() err=%v", err)
	}
	if err := s.Destroy(context.Background(), "tok"); err != nil {
		t.Fatalf("Destroy() err=%v", err)
	}
	if _, ok, _ := s.Get(context.Background(), "tok"); ok {
		t.Fatal("Get() ok=true after Destroy")
	}
	// destroying again is not an error
	if err := s.Destroy(context.Background(), "tok"); err != nil {
		t.Fatalf("second Destroy() err=%v", err)
	}
}

func TestMemoryStore_IdleExpiry(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(10 * time.Minute)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	now := base
	s.now = func() time.Time { return now }

	if err := s.Set(context.Background(), "tok", Session{Started: true}); err != nil {
		t.Fatalf("Set() err=%v", err)
	}
	now = base.Add(9 * time.Minute)
	if _, ok, _ := s.Get(context.Background(), "tok"); !ok {
		t.Fatal("Get() ok=false before expiry")
	}
	now = base.Add(11 * time.Minute)
	if _, ok, _ := s.Get(context.Background(), "tok"); ok {
		t.Fatal("Get() ok=true after expiry")
	}
}
