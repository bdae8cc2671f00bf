package vault

import (
	"encoding/base64"
	"fmt"
)

// obfuscationKey is the rolling XOR key applied to stored values.
//
// This is reversible encoding, not encryption: it only keeps tokens and
// profiles from being read by casually opening the store file. Anyone
// with this source can decode the values, and the design makes no
// confidentiality claim beyond that.
var obfuscationKey = []byte("sofra-session-store-v1")

// obfuscate XOR-mixes the value with the rolling key and base64-encodes
// the result.
func obfuscate(data []byte) string {
	mixed := make([]byte, len(data))
	for i, b := range data {
		mixed[i] = b ^ obfuscationKey[i%len(obfuscationKey)]
	}
	return base64.StdEncoding.EncodeToString(mixed)
}

// deobfuscate reverses obfuscate.
func deobfuscate(encoded string) ([]byte, error) {
	mixed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding stored value: %w", err)
	}
	data := make([]byte, len(mixed))
	for i, b := range mixed {
		data[i] = b ^ obfuscationKey[i%len(obfuscationKey)]
	}
	return data, nil
}
