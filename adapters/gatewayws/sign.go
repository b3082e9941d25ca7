package gatewayws

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
)

// sign returns the base64 RSA PKCS1v15 SHA-256 signature of "nonce:timestamp".
// A missing or unusable key yields an empty signature.
func sign(privateKeyPEM, nonce, timestamp string) string {
	if privateKeyPEM == "" {
		return ""
	}

	key := parsePrivateKey(privateKeyPEM)
	if key == nil {
		return ""
	}

	digest := sha256.Sum256([]byte(nonce + ":" + timestamp))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return ""
	}

	return base64.StdEncoding.EncodeToString(sig)
}

func parsePrivateKey(s string) *rsa.PrivateKey {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil
	}

	rsaKey, _ := key.(*rsa.PrivateKey)
	return rsaKey
}
