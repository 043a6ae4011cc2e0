package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
    t.Parallel()

    hash, err := HashPassword("s3cret-pass", 4)
    if err != nil {
        t.Fatalf("hash: %v", err)
    }
    if hash == "s3cret-pass" {
        t.Fatal("hash must not equal the plain password")
    }
    if !VerifyPassword(hash, "s3cret-pass") {
        t.Error("correct password should verify")
    }
    if VerifyPassword(hash, "wrong-pass") {
        t.Error("wrong password should not verify")
    }
    if VerifyPassword("not-a-bcrypt-hash", "s3cret-pass") {
        t.Error("malformed hash should not verify")
    }
}
