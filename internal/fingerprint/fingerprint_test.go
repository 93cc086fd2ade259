package fingerprint

import "testing"

func TestCanonicalize(t *testing.T) {
	out, err := Canonicalize([]byte(`{ "b":2, "a":{"d":1,"c":"x"} }`))
	if err != nil {
		t.Fatalf("canonicalize error: %v", err)
	}
	if string(out) != `{"a":{"c":"x","d":1},"b":2}` {
		t.Fatalf("unexpected canonical form: %s", out)
	}
}

func TestDigestJSONStable(t *testing.T) {
	a, err := DigestJSON([]byte(`{"conversation_id":"c1","agent_id":"a1"}`))
	if err != nil {
		t.Fatalf("digest error: %v", err)
	}
	b, err := DigestJSON([]byte(`{ "agent_id":"a1", "conversation_id":"c1" }`))
	if err != nil {
		t.Fatalf("digest error: %v", err)
	}
	if a != b {
		t.Fatalf("expected same digest for equivalent JSON")
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", a)
	}
}

func TestDigestJSONInvalid(t *testing.T) {
	if _, err := DigestJSON([]byte(`{`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}

func TestDigestValue(t *testing.T) {
	a, err := Digest(map[string]any{"x": 1, "y": []any{"a", nil}})
	if err != nil {
		t.Fatalf("digest error: %v", err)
	}
	b, _ := Digest(map[string]any{"y": []any{"a", nil}, "x": 1})
	if a != b {
		t.Fatalf("expected equal digests")
	}
	if _, err := Digest(func() {}); err == nil {
		t.Fatalf("expected marshal error")
	}
}
