package security

import "testing"

func TestHashAndVerify(t *testing.T) {
	h := NewArgon2Hasher(DefaultArgon2Params())

	encoded, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Verify("correct horse battery staple", encoded) {
		t.Fatal("correct password rejected")
	}
	if h.Verify("wrong password", encoded) {
		t.Fatal("wrong password accepted")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := NewArgon2Hasher(DefaultArgon2Params())

	a, err := h.Hash("password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestVerifyRejectsMalformedEncoding(t *testing.T) {
	h := NewArgon2Hasher(DefaultArgon2Params())
	for _, encoded := range []string{"", "plaintext", "$argon2id$v=19$m=65536"} {
		if h.Verify("password", encoded) {
			t.Errorf("accepted malformed hash %q", encoded)
		}
	}
}
