package secure

import (
	"strings"
	"sync"
	"testing"
)

func TestNewValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "seals bytes",
			data: []byte("my-secret-password"),
			want: "my-secret-password",
		},
		{
			name: "empty value is representable",
			data: []byte{},
			want: "",
		},
		{
			name: "nil value is representable",
			data: nil,
			want: "",
		},
		{
			name: "binary data survives the round trip",
			data: []byte{0x00, 0xFF, 0x10, 0x20},
			want: string([]byte{0x00, 0xFF, 0x10, 0x20}),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewValue(append([]byte(nil), tt.data...))
			defer v.Destroy()

			got, err := v.Reveal()
			if err != nil {
				t.Fatalf("Reveal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Reveal() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueSealingWipesInput(t *testing.T) {
	t.Parallel()

	// memguard consumes the input slice while sealing
	input := []byte("wiped-after-sealing")
	v := NewValue(input)
	defer v.Destroy()

	if string(input) == "wiped-after-sealing" {
		t.Error("input slice was not wiped by sealing")
	}
}

func TestValueMultipleReveals(t *testing.T) {
	t.Parallel()

	v := NewValue([]byte("test-secret"))
	defer v.Destroy()

	for i := 0; i < 3; i++ {
		got, err := v.Reveal()
		if err != nil {
			t.Fatalf("Reveal() iteration %d error = %v", i, err)
		}
		if got != "test-secret" {
			t.Errorf("Reveal() iteration %d = %q, want %q", i, got, "test-secret")
		}
	}
}

func TestValueDestroy(t *testing.T) {
	t.Parallel()

	v := NewValue([]byte("secret-to-destroy"))

	v.Destroy()
	// Double destroy must be idempotent
	v.Destroy()

	got, err := v.Reveal()
	if err != nil {
		t.Fatalf("Reveal() after Destroy error = %v", err)
	}
	if got != "" {
		t.Errorf("Reveal() after Destroy = %q, want empty", got)
	}
}

func TestValueLargePayload(t *testing.T) {
	t.Parallel()

	// Sized like a fetched document rather than a single field
	payload := strings.Repeat("x", 64*1024)
	v := NewValue([]byte(payload))
	defer v.Destroy()

	got, err := v.Reveal()
	if err != nil {
		t.Fatalf("Reveal() error = %v", err)
	}
	if got != payload {
		t.Error("payload corrupted after sealing")
	}
}

func TestValueConcurrentReveal(t *testing.T) {
	t.Parallel()

	v := NewValue([]byte("concurrent-secret"))
	defer v.Destroy()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := v.Reveal()
			if err != nil {
				t.Errorf("Reveal() error = %v", err)
				return
			}
			if got != "concurrent-secret" {
				t.Errorf("Reveal() = %q under concurrency", got)
			}
		}()
	}
	wg.Wait()
}
